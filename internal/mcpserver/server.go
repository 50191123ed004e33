// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Promptdeck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dverne/promptdeck/internal/index"
	"github.com/dverne/promptdeck/internal/itemstore"
	"github.com/dverne/promptdeck/internal/versionstore"
)

// Server wraps the MCP server with Promptdeck tools.
type Server struct {
	mcp      *server.MCPServer
	items    *itemstore.Store
	versions *versionstore.Store
	db       *index.DB
}

// New creates a new MCP server with all Promptdeck tools registered.
func New(items *itemstore.Store, versions *versionstore.Store, db *index.DB) *Server {
	s := &Server{items: items, versions: versions, db: db}

	s.mcp = server.NewMCPServer(
		"Promptdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_prompts",
		mcp.WithDescription("Full-text search through prompt titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPrompts)

	s.mcp.AddTool(mcp.NewTool("read_prompt",
		mcp.WithDescription("Read the full content of a prompt by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
	), s.readPrompt)

	s.mcp.AddTool(mcp.NewTool("create_prompt",
		mcp.WithDescription("Create a new prompt with the given title and content. "+
			"Content SHOULD follow the guidance in the promptdeck://prompt-format resource "+
			"(or the get_prompt_contract tool)."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Prompt title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Prompt text")),
	), s.createPrompt)

	s.mcp.AddTool(mcp.NewTool("get_prompt_contract",
		mcp.WithDescription("Returns the canonical Promptdeck prompt-writing guidance. "+
			"Call this before creating prompts."),
	), s.getPromptContract)

	s.mcp.AddTool(mcp.NewTool("list_prompts",
		mcp.WithDescription("List all prompts and folders as an indented tree outline."),
	), s.listPrompts)

	s.mcp.AddTool(mcp.NewTool("get_prompt_history",
		mcp.WithDescription("Get the version history of a prompt, newest first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
	), s.getPromptHistory)

	// Resource: prompt-writing guidance.
	s.mcp.AddResource(
		mcp.NewResource("promptdeck://prompt-format", "Prompt Format Guidance",
			mcp.WithResourceDescription("Canonical guidance for writing prompts stored in Promptdeck."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPromptFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, ok := s.items.Get(id)
	if !ok || !it.IsPrompt() {
		return mcp.NewToolResultError(fmt.Sprintf("prompt not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s\n\n%s", it.Title, it.Content)), nil
}

func (s *Server) createPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	it := s.items.CreatePrompt(nil)
	it, _ = s.items.UpdateItem(it.ID, itemstore.Patch{Title: &title, Content: &content})
	_ = index.IndexItem(s.db, it)

	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", it.Title, it.ID)), nil
}

func (s *Server) listPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	var walk func(nodes []itemstore.Node, depth int)
	walk = func(nodes []itemstore.Node, depth int) {
		for _, n := range nodes {
			indent := strings.Repeat("  ", depth)
			if n.IsFolder() {
				fmt.Fprintf(&b, "%s%s/\n", indent, n.Title)
			} else {
				fmt.Fprintf(&b, "%s%s (%s)\n", indent, n.Title, n.ID)
			}
			walk(n.Children, depth+1)
		}
	}
	walk(s.items.Tree(), 0)

	if b.Len() == 0 {
		return mcp.NewToolResultText("no prompts yet"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getPromptHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	it, ok := s.items.Get(id)
	if !ok || !it.IsPrompt() {
		return mcp.NewToolResultError(fmt.Sprintf("prompt not found: %s", id)), nil
	}
	entries := s.versions.Timeline(it.ID, it.Content, it.UpdatedAt)
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPromptContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PromptFormatContract), nil
}

func (s *Server) readPromptFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "promptdeck://prompt-format",
			MIMEType: "text/markdown",
			Text:     PromptFormatContract,
		},
	}, nil
}
