package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/ignore"
	"promptctx/index"
	"promptctx/notify"
	"promptctx/scanner"
)

// runeCodec treats every rune as one token. Keeps token budgets exact
// without a BPE vocabulary.
type runeCodec struct{}

func (runeCodec) Count(text string) int { return len([]rune(text)) }
func (runeCodec) Encode(text string) []int {
	runes := []rune(text)
	ids := make([]int, len(runes))
	for i, r := range runes {
		ids[i] = int(r)
	}
	return ids
}
func (runeCodec) Decode(ids []int) string {
	runes := make([]rune, len(ids))
	for i, id := range ids {
		runes[i] = rune(id)
	}
	return string(runes)
}

type allowAll struct{}

func (allowAll) Contains(absolutePath string) bool { return true }

func newTestScanHandler(t *testing.T, root string) *ScanHandler {
	t.Helper()
	gate := index.NewGate()
	gate.Open()
	service := scanner.NewService(scanner.Config{
		ContentRoots: []string{root},
		Exclusions:   ignore.Config{UseGitignore: true},
		Codec:        runeCodec{},
		Membership:   allowAll{},
		Gate:         gate,
		Notifier:     notify.Func(func(string) {}),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &ScanHandler{
		Scanner:          service,
		DefaultMaxTokens: 100000,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func Test_ScanHandler_ReturnsContentAndSummary(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0644)

	h := newTestScanHandler(t, root)
	result, _, err := h.Handle(context.Background(), nil, ScanArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success")
	}

	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "Directory Structure:") {
		t.Errorf("expected tree section, got:\n%s", text)
	}
	if !strings.Contains(text, "package main") {
		t.Errorf("expected file content, got:\n%s", text)
	}
	if !strings.Contains(text, "Files: 1") {
		t.Errorf("expected summary, got:\n%s", text)
	}
}

func Test_ScanHandler_CountOnlyOmitsContent(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0644)

	h := newTestScanHandler(t, root)
	result, _, err := h.Handle(context.Background(), nil, ScanArgs{CountOnly: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := result.Content[0].(*mcp.TextContent).Text
	if strings.Contains(text, "package main") {
		t.Errorf("expected no file content in countOnly mode, got:\n%s", text)
	}
	if !strings.Contains(text, "Tokens: ") {
		t.Errorf("expected token summary, got:\n%s", text)
	}
}

func Test_ScanHandler_ScanErrorIsToolError(t *testing.T) {
	gate := index.NewGate()
	gate.Open()
	service := scanner.NewService(scanner.Config{
		ContentRoots: nil, // no roots and no start dir
		Codec:        runeCodec{},
		Membership:   allowAll{},
		Gate:         gate,
		Notifier:     notify.Func(func(string) {}),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h := &ScanHandler{
		Scanner:          service,
		DefaultMaxTokens: 100,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	result, _, err := h.Handle(context.Background(), nil, ScanArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true when no scan root can be resolved")
	}
}
