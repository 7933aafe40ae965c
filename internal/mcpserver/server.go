// Package mcpserver exposes the batch agent's tool surface over MCP
// (Model Context Protocol) stdio transport, so an external tool-calling
// layer can drive a board session.
//
// The session model follows the batch runner: the first tool call
// snapshots the live document into a private mirror, every subsequent
// call mutates that mirror, and nothing reaches the shared board until
// apply_to_doc commits the diff. discard_session throws the mirror away.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mwhite-io/easel/internal/agent"
	"github.com/mwhite-io/easel/internal/doc"
)

// Server wraps the MCP server with the board tools.
type Server struct {
	mcp       *server.MCPServer
	live      doc.Document
	log       *slog.Logger
	newRunner func() (*agent.Runner, error)

	runner *agent.Runner
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithRunnerFactory overrides session construction. Tests inject
// deterministic ids through it.
func WithRunnerFactory(fn func() (*agent.Runner, error)) Option {
	return func(s *Server) { s.newRunner = fn }
}

// New creates an MCP server over the live document with every board
// tool registered.
func New(live doc.Document, opts ...Option) *Server {
	s := &Server{
		live: live,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newRunner == nil {
		s.newRunner = func() (*agent.Runner, error) {
			return agent.New(live, agent.WithLogger(s.log))
		}
	}

	s.mcp = server.NewMCPServer(
		"Easel",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	for _, def := range agent.Tools() {
		toolOpts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
		for _, p := range def.Params {
			toolOpts = append(toolOpts, paramOption(p))
		}
		name := def.Name
		s.mcp.AddTool(mcp.NewTool(name, toolOpts...),
			func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return s.dispatch(name, req.GetArguments())
			})
	}

	s.mcp.AddTool(mcp.NewTool("apply_to_doc",
		mcp.WithDescription("Commit the session's accumulated changes to the shared board as one atomic diff. "+
			"Returns the created/updated/deleted id sets and the full call log. Ends the session."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.applyToDoc()
	})

	s.mcp.AddTool(mcp.NewTool("discard_session",
		mcp.WithDescription("Throw away the session's uncommitted changes. The shared board is untouched."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.discardSession()
	})

	s.mcp.AddResource(
		mcp.NewResource("easel://tool-guide", "Board Tool Guide",
			mcp.WithResourceDescription("How the board tools and the session/commit model work."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readToolGuideResource,
	)

	return s
}

// paramOption maps a registry param onto the MCP schema option.
func paramOption(p agent.Param) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if p.Required {
		propOpts = append(propOpts, mcp.Required())
	}
	switch p.Type {
	case "number", "integer":
		return mcp.WithNumber(p.Name, propOpts...)
	case "array":
		return mcp.WithArray(p.Name, propOpts...)
	default:
		return mcp.WithString(p.Name, propOpts...)
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// dispatch routes one tool call into the current session, opening a
// session on first use.
func (s *Server) dispatch(name string, args map[string]any) (*mcp.CallToolResult, error) {
	if s.runner == nil {
		r, err := s.newRunner()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s.runner = r
		s.log.Info("mcpserver.session.open")
	}

	res, err := s.runner.Call(name, args)
	if err != nil {
		// Unknown tool: fatal to the call, not to the session.
		var unknown *agent.UnknownToolError
		if errors.As(err, &unknown) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) applyToDoc() (*mcp.CallToolResult, error) {
	if s.runner == nil {
		return mcp.NewToolResultError("no active session: nothing to apply"), nil
	}
	applied, err := s.runner.ApplyToDoc()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.runner = nil
	s.log.Info("mcpserver.session.apply",
		"created", len(applied.CreatedIDs),
		"updated", len(applied.UpdatedIDs),
		"deleted", len(applied.DeletedIDs))
	return jsonResult(applied)
}

func (s *Server) discardSession() (*mcp.CallToolResult, error) {
	if s.runner == nil {
		return mcp.NewToolResultText("no active session"), nil
	}
	s.runner = nil
	s.log.Info("mcpserver.session.discard")
	return mcp.NewToolResultText("session discarded; the board is untouched"), nil
}

func (s *Server) readToolGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "easel://tool-guide",
			MIMEType: "text/markdown",
			Text:     ToolGuide,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
