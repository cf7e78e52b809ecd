package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/chat"
	"promptctx/index"
)

// StatusArgs defines the input parameters for the promptctx_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	ProjectIndex *index.ProjectIndex
	ContentIndex *index.ContentIndex
	Executor     *chat.Executor
	Gate         *index.Gate
	ContentRoots []string
	StartTime    time.Time
	Logger       *slog.Logger
}

// Handle processes a promptctx_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	fileCount := h.ProjectIndex.FileCount()
	totalSize := h.ProjectIndex.TotalSizeBytes()
	languageCounts := h.ProjectIndex.LanguageCounts()
	docCount := h.ContentIndex.DocumentCount()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("promptctx_status",
		"files", fileCount,
		"totalSize", totalSize,
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	var builder strings.Builder
	builder.WriteString("=== promptctx Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Content roots: %s\n", strings.Join(h.ContentRoots, ", ")))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	if h.Gate.Ready() {
		builder.WriteString("Index: ready\n")
	} else {
		builder.WriteString("Index: building\n")
	}
	builder.WriteString(fmt.Sprintf("Indexed files: %d\n", fileCount))
	builder.WriteString(fmt.Sprintf("Content-indexed documents: %d\n", docCount))
	builder.WriteString(fmt.Sprintf("Total indexed size: %s\n", formatFileSize(totalSize)))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if h.Executor.IsRunning() {
		builder.WriteString("Chat: generation in flight\n")
	} else {
		builder.WriteString("Chat: idle\n")
	}

	if len(languageCounts) > 0 {
		builder.WriteString("\nLanguages:\n")

		type languageEntry struct {
			language string
			count    int
		}
		entries := make([]languageEntry, 0, len(languageCounts))
		for language, count := range languageCounts {
			entries = append(entries, languageEntry{language, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].count > entries[j].count
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.language, entry.count))
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: builder.String()}},
	}, nil, nil
}
