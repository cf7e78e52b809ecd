// Package server assembles the MCP server and registers its tools.
package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"promptctx/tools"
)

// Setup creates the MCP server with all tool registrations.
func Setup(
	scanHandler *tools.ScanHandler,
	chatHandler *tools.ChatHandler,
	filesHandler *tools.FilesHandler,
	searchHandler *tools.SearchHandler,
	statusHandler *tools.StatusHandler,
	reindexHandler *tools.ReindexHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "promptctx",
			Version: "0.3.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server assembles token-budgeted project source context for language-model prompts and manages a single chat conversation about the project.

Typical flow:
- Use promptctx_scan to assemble the project context (directory tree plus file contents, truncated to a token budget). Use countOnly to measure token usage without the content.
- Use promptctx_chat_send to ask a question, optionally passing the scanned context and an editor selection. Calling it again while a generation is running stops that generation.
- Use promptctx_files and promptctx_search to explore the indexed project before deciding what to scan.`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "promptctx_scan",
		Description: `Assemble project context for a prompt: a directory tree followed by the concatenated contents of all included files, truncated to a token budget.

Parameters:
  - startDir: directory to scan. Omit to scan from the common root of all content roots.
  - maxTokens: token budget (default from server settings).
  - countOnly: only measure token usage; returns counts without the content.`,
	}, scanHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "promptctx_chat_send",
		Description: `Send a prompt to the language model within the ongoing conversation. Optionally include an editor selection (selectedText) and scanned project context (projectContext).

Only one generation runs at a time: calling this tool while a generation is in flight stops the running generation instead of starting a new one.`,
	}, chatHandler.HandleSend)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "promptctx_chat_clear",
		Description: "Clear the conversation history.",
	}, chatHandler.HandleClear)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "promptctx_chat_remove_pair",
		Description: "Remove a user/assistant message pair from the conversation history by their exact texts.",
	}, chatHandler.HandleRemovePair)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "promptctx_files",
		Description: `Find project files by glob pattern.

Pattern examples:
  - "**/*.go" - all Go files
  - "src/**/*.ts" - TypeScript files under src/
  - "*.json" - JSON files in root only`,
	}, filesHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "promptctx_search",
		Description: `Full-text search over indexed project file contents.

Query formats:
  - Plain text: word-level matching (e.g., "handleRequest")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching

Use fileGlob to restrict results by path (e.g., "**/*.go").`,
	}, searchHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "promptctx_status",
		Description: "Show server status: content roots, index readiness, file counts, languages, chat state, memory usage, and uptime.",
	}, statusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "promptctx_reindex",
		Description: "Force a full re-index of the project. Clears the existing indexes and rebuilds them from scratch.",
	}, reindexHandler.Handle)

	return mcpServer
}
