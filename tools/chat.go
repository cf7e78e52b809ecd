package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/chat"
)

// ChatSendArgs defines the input parameters for the promptctx_chat_send tool.
type ChatSendArgs struct {
	Prompt         string `json:"prompt" jsonschema:"The user question or instruction"`
	SelectedText   string `json:"selectedText,omitempty" jsonschema:"Optional editor selection to include as context"`
	ProjectContext string `json:"projectContext,omitempty" jsonschema:"Optional scanned project context to include"`
	Language       string `json:"language,omitempty" jsonschema:"Programming language the question is about (default: programming)"`
}

// ChatClearArgs defines the input parameters for the promptctx_chat_clear tool.
type ChatClearArgs struct{}

// ChatRemovePairArgs defines the input parameters for the promptctx_chat_remove_pair tool.
type ChatRemovePairArgs struct {
	UserText      string `json:"userText" jsonschema:"Text of the user message to remove"`
	AssistantText string `json:"assistantText" jsonschema:"Text of the assistant message to remove"`
}

// ChatHandler holds the dependencies for the chat tools.
type ChatHandler struct {
	Executor *chat.Executor
	Logger   *slog.Logger
}

// HandleSend processes a promptctx_chat_send request. While a generation
// is in flight a second call is the stop toggle: it cancels the running
// request and returns without starting a new one.
func (h *ChatHandler) HandleSend(ctx context.Context, req *mcp.CallToolRequest, args ChatSendArgs) (*mcp.CallToolResult, any, error) {
	if args.Prompt == "" && !h.Executor.IsRunning() {
		h.Logger.Warn("promptctx_chat_send called with empty prompt")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: prompt parameter is required"}},
			IsError: true,
		}, nil, nil
	}

	start := time.Now()
	future := h.Executor.Submit(chat.Request{
		Prompt:         args.Prompt,
		SelectedText:   args.SelectedText,
		ProjectContext: args.ProjectContext,
		Language:       args.Language,
	})

	reply, err := future.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.Logger.Info("promptctx_chat_send stopped", "elapsed", time.Since(start))
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "Generation stopped."}},
			}, nil, nil
		}
		h.Logger.Error("promptctx_chat_send failed", "error", err)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Chat error: %v", err)}},
			IsError: true,
		}, nil, nil
	}

	h.Logger.Info("promptctx_chat_send", "elapsed", time.Since(start), "replyLength", len(reply.Text))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: reply.Text}},
	}, nil, nil
}

// HandleClear processes a promptctx_chat_clear request.
func (h *ChatHandler) HandleClear(ctx context.Context, req *mcp.CallToolRequest, args ChatClearArgs) (*mcp.CallToolResult, any, error) {
	h.Executor.Clear()
	h.Logger.Info("promptctx_chat_clear")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Conversation cleared."}},
	}, nil, nil
}

// HandleRemovePair processes a promptctx_chat_remove_pair request.
func (h *ChatHandler) HandleRemovePair(ctx context.Context, req *mcp.CallToolRequest, args ChatRemovePairArgs) (*mcp.CallToolResult, any, error) {
	if args.UserText == "" || args.AssistantText == "" {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: userText and assistantText parameters are required"}},
			IsError: true,
		}, nil, nil
	}

	h.Executor.RemoveMessagePair(chat.UserMessage(args.UserText), chat.AssistantMessage(args.AssistantText))
	h.Logger.Info("promptctx_chat_remove_pair")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Message pair removed."}},
	}, nil, nil
}
