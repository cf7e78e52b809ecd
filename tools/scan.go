package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/scanner"
	"promptctx/token"
)

// ScanArgs defines the input parameters for the promptctx_scan tool.
type ScanArgs struct {
	StartDir  string `json:"startDir,omitempty" jsonschema:"Directory to scan. Empty means the common root of all content roots"`
	MaxTokens int    `json:"maxTokens,omitempty" jsonschema:"Token budget for the assembled context (default from server settings)"`
	CountOnly bool   `json:"countOnly,omitempty" jsonschema:"If true only measure token usage, returning counts without content"`
}

// ScanHandler holds the dependencies for the scan tool.
type ScanHandler struct {
	Scanner          *scanner.Service
	DefaultMaxTokens int
	Logger           *slog.Logger
}

// Handle processes a promptctx_scan request. The scan itself runs on a
// background goroutine; the handler blocks on its future until the result
// arrives or the caller goes away.
func (h *ScanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	maxTokens := args.MaxTokens
	if maxTokens <= 0 {
		maxTokens = h.DefaultMaxTokens
	}

	future := h.Scanner.Scan(ctx, scanner.Request{
		StartDir:  args.StartDir,
		MaxTokens: maxTokens,
		CountOnly: args.CountOnly,
	})
	result, err := future.Wait(ctx)
	if err != nil {
		h.Logger.Error("promptctx_scan failed", "startDir", args.StartDir, "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Scan error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("promptctx_scan",
		"startDir", args.StartDir,
		"maxTokens", maxTokens,
		"countOnly", args.CountOnly,
		"tokens", result.TokenCount,
		"files", result.FileCount,
		"elapsed", time.Since(start),
	)

	summary := fmt.Sprintf("Tokens: %s\nFiles: %d (skipped %d files, %d directories)",
		token.FormatCount(result.TokenCount),
		result.FileCount,
		result.SkippedFileCount,
		result.SkippedDirectoryCount,
	)

	output := summary
	if !args.CountOnly {
		output = result.Content + "\n\n" + summary
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}, nil, nil
}
