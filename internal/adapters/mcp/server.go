// Package mcp exposes the scope tree, selection previews and memory runs as
// Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/scopetrace"
	httpapi "github.com/aretw0/scopetrace/internal/adapters/http"
	"github.com/aretw0/scopetrace/internal/presentation/graph"
	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const scopesURI = "scopetrace://scopes"

// ScopesResponse aligns with GET /scopes of the HTTP API.
type ScopesResponse struct {
	Nodes []httpapi.Node `json:"nodes" jsonschema_description:"Scopes and signals in registration order"`
}

// RunResponse aligns with POST /runs of the HTTP API.
type RunResponse struct {
	Name      string             `json:"name"`
	Format    string             `json:"format"`
	Signals   int                `json:"signals" jsonschema_description:"Number of traced signals"`
	Steps     uint64             `json:"steps" jsonschema_description:"Dumps written"`
	LastTime  uint64             `json:"lastTime"`
	Truncated bool               `json:"truncated"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Server wraps one scope tree and exposes it as an MCP server.
type Server struct {
	tree      *scopetree.Tree
	program   domain.Program
	runner    httpapi.Runner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server. The run_trace tool is only registered when
// runner is not nil.
func NewServer(tree *scopetree.Tree, program domain.Program, runner httpapi.Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		tree:      tree,
		program:   program,
		runner:    runner,
		logger:    logger,
		mcpServer: server.NewMCPServer("scopetrace-mcp", strings.TrimSpace(scopetrace.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mcp server listening (sse)", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_scopes",
		mcp.WithDescription("List the scopes and signals of the model, optionally below a dotted path."),
		mcp.WithString("prefix", mcp.Description("Dotted path of the subtree to keep (optional)")),
		mcp.WithOutputSchema[ScopesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListScopes))

	s.mcpServer.AddTool(mcp.NewTool("preview_selection",
		mcp.WithDescription("Replay dumpvars directives against the scope tree and report what they enable. Nothing is traced."),
		mcp.WithString("directives", mcp.Required(), mcp.Description(`Directives in "depth:path" form, separated by commas or spaces`)),
		mcp.WithOutputSchema[httpapi.Selection](),
	), mcp.NewStructuredToolHandler(s.handlePreview))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Render the scope tree as a Mermaid graph."),
		mcp.WithBoolean("overlay", mcp.Description("Highlight the configured selection")),
	), s.handleGraph)

	if s.runner == nil {
		return
	}
	s.mcpServer.AddTool(mcp.NewTool("run_trace",
		mcp.WithDescription("Trace the model into memory under a name and report the run."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Key of the trace in the memory store")),
		mcp.WithString("directives", mcp.Description("Directives replacing the configured program (optional)")),
		mcp.WithNumber("steps", mcp.Description("Number of dumps, the configured count when omitted")),
		mcp.WithOutputSchema[RunResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))
}

func (s *Server) handleListScopes(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScopesResponse, error) {
	prefix, _ := args["prefix"].(string)
	return ScopesResponse{Nodes: httpapi.Nodes(s.tree, prefix)}, nil
}

func (s *Server) handlePreview(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (httpapi.Selection, error) {
	text, _ := args["directives"].(string)
	program, err := parseDirectives(text)
	if err != nil {
		return httpapi.Selection{}, err
	}
	view, err := httpapi.Preview(s.tree, program)
	if err != nil {
		return httpapi.Selection{}, fmt.Errorf("preview failed: %w", err)
	}
	return *view, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var overlay *graph.GraphOverlay
	if request.GetBool("overlay", false) {
		set := selection.New(s.tree)
		if _, err := set.Replay(s.program); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("replay failed: %v", err)), nil
		}
		overlay = &graph.GraphOverlay{Enabled: set.Paths()}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(s.tree, overlay)), nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return RunResponse{}, errors.New("name is required")
	}
	text, _ := args["directives"].(string)
	program, err := parseDirectives(text)
	if err != nil {
		return RunResponse{}, err
	}
	var steps uint64
	if n, ok := args["steps"].(float64); ok {
		if n < 0 {
			return RunResponse{}, errors.New("steps must not be negative")
		}
		steps = uint64(n)
	}

	summary, err := s.runner.Run(ctx, name, program, steps)
	if err != nil {
		s.logger.Error("mcp run failed", "name", name, "err", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}
	return RunResponse{
		Name:      name,
		Format:    summary.Format,
		Signals:   summary.Signals,
		Steps:     summary.Steps,
		LastTime:  summary.LastTime,
		Truncated: summary.Truncated,
		Metrics:   summary.Metrics,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(scopesURI, "Scope Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(httpapi.Nodes(s.tree, ""))
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      scopesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

// parseDirectives accepts directives separated by commas or whitespace.
func parseDirectives(text string) (domain.Program, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, nil
	}
	return domain.ParseProgram(fields)
}
