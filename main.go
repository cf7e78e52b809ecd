package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/chat"
	"promptctx/ignore"
	"promptctx/index"
	"promptctx/llm"
	"promptctx/notify"
	"promptctx/register"
	"promptctx/scanner"
	"promptctx/server"
	"promptctx/settings"
	"promptctx/token"
	"promptctx/tools"
	"promptctx/watcher"
)

// stringList is a repeatable CLI flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }
func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	// "register" is a subcommand, not a server run.
	if len(os.Args) > 1 && os.Args[1] == "register" {
		if err := register.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := settings.Default()

	var roots stringList
	var excludes stringList
	var excludeDirs stringList
	var includeExts stringList
	var syncInterval int
	flag.Var(&roots, "root", "Content root directory (repeatable; default: current working directory)")
	flag.Var(&excludes, "exclude", "Extra ignore pattern (repeatable)")
	flag.Var(&excludeDirs, "exclude-dir", "Excluded directory name (repeatable; replaces the default set)")
	flag.Var(&includeExts, "include-ext", "Included file extension without dot (repeatable; replaces the default allow-list)")
	flag.BoolVar(&cfg.UseGitignore, "use-gitignore", cfg.UseGitignore, "Apply .gitignore rules during scans")
	flag.BoolVar(&cfg.StripDocComments, "strip-doc-comments", cfg.StripDocComments, "Strip block and /// doc comments from scanned content")
	flag.IntVar(&cfg.MaxContextTokens, "max-tokens", cfg.MaxContextTokens, "Default token budget for assembled context")
	flag.Int64Var(&cfg.MaxFileSizeBytes, "max-file-size", cfg.MaxFileSizeBytes, "Maximum file size in bytes")
	flag.IntVar(&cfg.MaxWindowMessages, "max-messages", cfg.MaxWindowMessages, "Maximum conversation history length")
	flag.StringVar(&cfg.Language, "language", cfg.Language, "Target language for the chat system message")
	flag.StringVar(&cfg.BaseURL, "llm-base-url", cfg.BaseURL, "OpenAI-compatible chat completions base URL")
	flag.StringVar(&cfg.Model, "llm-model", cfg.Model, "Model name")
	flag.Float64Var(&cfg.Temperature, "llm-temperature", cfg.Temperature, "Sampling temperature")
	flag.DurationVar(&cfg.RequestTimeout, "llm-timeout", cfg.RequestTimeout, "Per-attempt LLM request timeout")
	flag.IntVar(&cfg.MaxRetries, "llm-retries", cfg.MaxRetries, "LLM retries after the first attempt")
	flag.IntVar(&syncInterval, "sync-interval", cfg.SyncIntervalSeconds, "Index reconciliation interval in seconds (0 disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Log file path (default: promptctx.log in the first content root)")
	flag.Parse()
	cfg.CustomPatterns = excludes
	cfg.ExcludedDirNames = excludeDirs
	cfg.IncludedExtensions = includeExts
	cfg.SyncIntervalSeconds = syncInterval

	if len(roots) == 0 {
		workingDir, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
			os.Exit(1)
		}
		roots = stringList{workingDir}
	}
	for i, root := range roots {
		absolute, err := filepath.Abs(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving root %s: %v\n", root, err)
			os.Exit(1)
		}
		roots[i] = absolute
	}
	cfg.ContentRoots = roots

	commonRoot, err := scanner.CommonRoot(cfg.ContentRoots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving common root: %v\n", err)
		os.Exit(1)
	}

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.ContentRoots[0], "promptctx.log")
	}

	// stdout carries the MCP stdio transport; logs go to a file or stderr.
	logger := setupLogger(cfg.LogLevel, cfg.LogFile)

	logger.Info("starting promptctx",
		"roots", cfg.ContentRoots,
		"commonRoot", commonRoot,
		"maxTokens", cfg.MaxContextTokens,
		"model", cfg.Model,
	)

	startTime := time.Now()

	policyConfig := exclusionConfig(cfg)
	policyConfig.RootDir = commonRoot
	policy := ignore.NewPolicy(policyConfig)

	projectIndex := index.NewProjectIndex(commonRoot)
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		logger.Error("failed to create content index", "error", err)
		os.Exit(1)
	}
	defer contentIndex.Close()

	gate := index.NewGate()

	// Initial indexing runs in the background; scans wait on the gate.
	go func() {
		indexedCount, totalSize := performIndexing(cfg.ContentRoots, projectIndex, contentIndex, policy, logger)
		gate.Open()
		logger.Info("initial indexing complete",
			"files", indexedCount,
			"totalSize", totalSize,
			"duration", time.Since(startTime),
		)
	}()

	fileWatcher, err := watcherStart(cfg.ContentRoots, policy, logger)
	if err != nil {
		logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	} else {
		go handleWatcherEvents(fileWatcher, projectIndex, contentIndex, policy, logger)
		defer fileWatcher.Close()
	}

	if cfg.SyncIntervalSeconds > 0 {
		stopSync := make(chan struct{})
		defer close(stopSync)
		go runPeriodicSync(cfg.SyncIntervalSeconds, cfg.ContentRoots, projectIndex, contentIndex, policy, logger, stopSync)
	}

	codec, err := token.NewTiktoken()
	if err != nil {
		logger.Error("failed to load token encoding", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewLogNotifier(logger)

	scanService := scanner.NewService(scanner.Config{
		ContentRoots:     cfg.ContentRoots,
		Exclusions:       exclusionConfig(cfg),
		StripDocComments: cfg.StripDocComments,
		Codec:            codec,
		Membership:       projectIndex,
		Gate:             gate,
		Notifier:         notifier,
		Logger:           logger,
	})

	generator := llm.NewClient(llm.Config{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
		MaxRetries:  cfg.MaxRetries,
	}, logger)

	window := chat.NewWindow(cfg.MaxWindowMessages)
	executor := chat.NewExecutor(window, generator, logger)
	defer executor.Close()

	scanHandler := &tools.ScanHandler{
		Scanner:          scanService,
		DefaultMaxTokens: cfg.MaxContextTokens,
		Logger:           logger,
	}
	chatHandler := &tools.ChatHandler{Executor: executor, Logger: logger}
	filesHandler := &tools.FilesHandler{ProjectIndex: projectIndex, Logger: logger}
	searchHandler := &tools.SearchHandler{ContentIndex: contentIndex, Logger: logger}
	statusHandler := &tools.StatusHandler{
		ProjectIndex: projectIndex,
		ContentIndex: contentIndex,
		Executor:     executor,
		Gate:         gate,
		ContentRoots: cfg.ContentRoots,
		StartTime:    startTime,
		Logger:       logger,
	}
	reindexHandler := &tools.ReindexHandler{
		Logger: logger,
		DoReindex: func() (tools.ReindexResult, error) {
			start := time.Now()
			projectIndex.Clear()
			if err := contentIndex.Clear(); err != nil {
				return tools.ReindexResult{}, fmt.Errorf("clearing content index: %w", err)
			}
			policy.Reload()
			count, size := performIndexing(cfg.ContentRoots, projectIndex, contentIndex, policy, logger)
			return tools.ReindexResult{
				FileCount:      count,
				TotalSizeBytes: size,
				Elapsed:        time.Since(start),
			}, nil
		},
	}

	mcpServer := server.Setup(scanHandler, chatHandler, filesHandler, searchHandler, statusHandler, reindexHandler)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// exclusionConfig maps the settings snapshot onto an exclusion policy
// config. RootDir is left for the caller: the startup policy roots at the
// common root, scans re-root per start directory.
func exclusionConfig(cfg settings.Settings) ignore.Config {
	return ignore.Config{
		ExcludedDirNames:   cfg.ExcludedDirNames,
		IncludedExtensions: cfg.IncludedExtensions,
		UseGitignore:       cfg.UseGitignore,
		CustomPatterns:     cfg.CustomPatterns,
		MaxFileSizeBytes:   cfg.MaxFileSizeBytes,
	}
}

// watcherStart creates and starts the recursive file watcher.
func watcherStart(roots []string, policy *ignore.Policy, logger *slog.Logger) (*watcher.Watcher, error) {
	fileWatcher, err := watcher.New(roots, policy, logger)
	if err != nil {
		return nil, err
	}
	go fileWatcher.Start()
	return fileWatcher, nil
}

// setupLogger creates an slog.Logger writing to a file, or stderr as
// fallback.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
