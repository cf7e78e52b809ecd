package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"promptctx/ignore"
	"promptctx/index"
	"promptctx/notify"
	"promptctx/token"
)

// Config wires a scan Service.
type Config struct {
	// ContentRoots are the project's top-level source directories. Scans
	// without an explicit start directory run from their deepest common
	// ancestor.
	ContentRoots []string

	// Exclusions is the policy template. Its RootDir is overridden per
	// scan with the active root, so a start directory's own .gitignore
	// applies; the rest is a read-only snapshot.
	Exclusions ignore.Config

	StripDocComments bool

	Codec      token.Codec
	Membership Membership
	Gate       *index.Gate
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

// Service orchestrates project content scans. Scans run on a background
// goroutine after the readiness gate opens; results are delivered through
// a Future. Concurrent scans are independent: counters are local to each
// scan.
type Service struct {
	cfg       Config
	truncator *token.Truncator
}

// NewService creates a scan Service.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:       cfg,
		truncator: token.NewTruncator(cfg.Codec, cfg.Notifier),
	}
}

// Request describes one scan.
type Request struct {
	// StartDir restricts the scan to a subtree. Empty means the common
	// root of all content roots.
	StartDir string

	// MaxTokens is the token budget for the assembled context.
	MaxTokens int

	// CountOnly skips truncation and notification; the scan is used
	// purely to measure token usage.
	CountOnly bool
}

// Future delivers a scan result. Scans are not cancellable: an abandoned
// future runs to completion and is discarded.
type Future struct {
	done   chan struct{}
	result *Result
	err    error
}

func (f *Future) complete(result *Result, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Done returns a channel closed when the scan finishes.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the scan finishes or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Scan starts a scan and returns its future. The context gates only the
// wait for index readiness.
func (s *Service) Scan(ctx context.Context, req Request) *Future {
	future := &Future{done: make(chan struct{})}
	go s.run(ctx, req, future)
	return future
}

func (s *Service) run(ctx context.Context, req Request, future *Future) {
	if s.cfg.Gate != nil {
		if err := s.cfg.Gate.Wait(ctx); err != nil {
			future.complete(nil, fmt.Errorf("waiting for index readiness: %w", err))
			return
		}
	}

	root := req.StartDir
	if root == "" {
		commonRoot, err := CommonRoot(s.cfg.ContentRoots)
		if err != nil {
			future.complete(nil, err)
			return
		}
		root = commonRoot
	}

	// Per-scan policy snapshot rooted at the active directory, so its
	// own .gitignore applies.
	exclusions := s.cfg.Exclusions
	exclusions.RootDir = root
	policy := ignore.NewPolicy(exclusions)

	result := &Result{}
	var b strings.Builder
	b.WriteString("Directory Structure:\n")

	tree, err := RenderTree(root, policy)
	if err != nil {
		future.complete(nil, fmt.Errorf("rendering directory tree: %w", err))
		return
	}
	b.WriteString(tree)
	b.WriteString("\n\nFile Contents:\n")

	walker := &contentWalker{
		policy:     policy,
		membership: s.cfg.Membership,
		codec:      s.cfg.Codec,
		stripDocs:  s.cfg.StripDocComments,
		maxTokens:  req.MaxTokens,
		logger:     s.cfg.Logger,
		out:        &b,
		result:     result,
	}
	// The start directory is itself a node: an excluded root counts as
	// one skipped directory and contributes no content.
	if walker.visit(root, true) == verdictContinue {
		walker.walk(root)
	}

	content := b.String()
	if !req.CountOnly {
		content = s.truncator.Truncate(content, req.MaxTokens, false)
	}
	result.Content = content
	result.TokenCount = s.cfg.Codec.Count(content)

	s.cfg.Logger.Info("scan complete",
		"root", root,
		"tokens", result.TokenCount,
		"files", result.FileCount,
		"skippedFiles", result.SkippedFileCount,
		"skippedDirs", result.SkippedDirectoryCount,
		"countOnly", req.CountOnly,
	)
	future.complete(result, nil)
}
