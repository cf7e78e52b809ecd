package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReindexArgs defines the input parameters for the promptctx_reindex tool.
type ReindexArgs struct{}

// ReindexResult describes one full index rebuild.
type ReindexResult struct {
	FileCount      int
	TotalSizeBytes int64
	Elapsed        time.Duration
}

// ReindexFunc rebuilds the indexes. Provided by main to avoid a
// dependency cycle with the indexing pipeline.
type ReindexFunc func() (ReindexResult, error)

// ReindexHandler holds the dependencies for the reindex tool.
type ReindexHandler struct {
	DoReindex ReindexFunc
	Logger    *slog.Logger
}

// Handle processes a promptctx_reindex request.
func (h *ReindexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReindexArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("promptctx_reindex started")

	result, err := h.DoReindex()
	if err != nil {
		h.Logger.Error("promptctx_reindex failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Reindex error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("promptctx_reindex complete",
		"files", result.FileCount,
		"totalSize", result.TotalSizeBytes,
		"elapsed", result.Elapsed,
	)

	output := fmt.Sprintf("Index rebuilt.\nFiles: %d\nTotal size: %s\nElapsed: %s",
		result.FileCount,
		formatFileSize(result.TotalSizeBytes),
		result.Elapsed.Round(time.Millisecond),
	)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}
