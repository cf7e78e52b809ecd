package tools

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/chat"
	"promptctx/index"
)

func Test_StatusHandler_ReportsIndexAndChatState(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	projectIndex := index.NewProjectIndex("/project")
	projectIndex.Add(&index.ProjectFile{
		Path:         "/project/main.go",
		RelativePath: "main.go",
		Language:     "Go",
		SizeBytes:    512,
		LineCount:    20,
		ModTime:      time.Now(),
	})

	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()
	contentIndex.IndexFile("main.go", "package main\n", "Go")

	gate := index.NewGate()
	gate.Open()

	executor := chat.NewExecutor(chat.NewWindow(10), echoGenerator{}, logger)
	defer executor.Close()

	h := &StatusHandler{
		ProjectIndex: projectIndex,
		ContentIndex: contentIndex,
		Executor:     executor,
		Gate:         gate,
		ContentRoots: []string{"/project"},
		StartTime:    time.Now().Add(-90 * time.Second),
		Logger:       logger,
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success")
	}

	text := result.Content[0].(*mcp.TextContent).Text
	for _, want := range []string{
		"Content roots: /project",
		"Index: ready",
		"Indexed files: 1",
		"Content-indexed documents: 1",
		"Chat: idle",
		"Go",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected status to contain %q, got:\n%s", want, text)
		}
	}
}

func Test_StatusHandler_IndexBuilding(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	contentIndex, err := index.NewContentIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer contentIndex.Close()

	executor := chat.NewExecutor(chat.NewWindow(10), echoGenerator{}, logger)
	defer executor.Close()

	h := &StatusHandler{
		ProjectIndex: index.NewProjectIndex("/project"),
		ContentIndex: contentIndex,
		Executor:     executor,
		Gate:         index.NewGate(), // never opened
		ContentRoots: []string{"/project"},
		StartTime:    time.Now(),
		Logger:       logger,
	}

	result, _, err := h.Handle(context.Background(), nil, StatusArgs{})
	if err != nil {
		t.Fatal(err)
	}

	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "Index: building") {
		t.Errorf("expected building state, got:\n%s", text)
	}
}
