// Package http serves the introspection API over a scope tree and its selection,
// and traces the model into memory on demand.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fortio.org/safecast"
	"github.com/aretw0/scopetrace/internal/presentation/graph"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/internal/validator"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Runner traces the served model into the memory store.
type Runner interface {
	Run(ctx context.Context, name string, program domain.Program, steps uint64) (tui.RunSummary, error)
}

// Server implements the generated ServerInterface for one tree and the program
// selected on it.
type Server struct {
	Tree     *scopetree.Tree
	Program  domain.Program
	Version  string
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	// Runner and Store back /runs. Both are optional.
	Runner Runner
	Store  *memory.Store
}

var _ ServerInterface = (*Server)(nil)

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.Logger.Error("openapi spec decode failed", "err", err)
			return
		}
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return HandlerFromMux(s, r)
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>scopetrace API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Info{App: "scopetrace-http", Version: strings.TrimSpace(s.Version)})
}

// ListScopes handles GET /scopes. The optional prefix keeps the subtree at that path.
func (s *Server) ListScopes(w http.ResponseWriter, r *http.Request, params ListScopesParams) {
	var prefix string
	if params.Prefix != nil {
		prefix = *params.Prefix
	}
	s.writeJSON(w, http.StatusOK, Nodes(s.Tree, prefix))
}

// Nodes lists the non-root nodes of tree, restricted to the subtree at prefix when
// it is not empty.
func Nodes(tree *scopetree.Tree, prefix string) []Node {
	out := make([]Node, 0, tree.Len())
	for _, n := range tree.Nodes() {
		if n.IsRoot() || (prefix != "" && !domain.HasSegmentPrefix(n.Path, prefix)) {
			continue
		}
		v := Node{Path: n.Path, Kind: n.Kind.String(), Depth: n.Depth}
		if n.IsSignal() {
			width := n.Width
			v.Width = &width
		}
		out = append(out, v)
	}
	return out
}

// GetSelection handles GET /selection.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	view, err := Preview(s.Tree, s.Program)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// PreviewSelection handles POST /selection/preview. Nothing is changed on the server.
func (s *Server) PreviewSelection(w http.ResponseWriter, r *http.Request) {
	var body PreviewSelectionJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("preview: invalid request body", "err", err)
		return
	}
	program, err := domain.ParseProgram(body.Directives)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, err := Preview(s.Tree, program)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// Preview replays program on a fresh selection of tree.
func Preview(tree *scopetree.Tree, program domain.Program) (*Selection, error) {
	report, err := validator.ValidateProgram(tree, program)
	if err != nil {
		return nil, err
	}
	view := &Selection{
		Program: program.Strings(),
		Enabled: report.Enabled,
		Signals: report.Signals,
	}
	if view.Enabled == nil {
		view.Enabled = []string{}
	}
	if len(report.Findings) > 0 {
		findings := make([]Finding, 0, len(report.Findings))
		for _, f := range report.Findings {
			findings = append(findings, Finding{
				Index:     f.Index,
				Directive: Directive{Depth: f.Directive.Depth, Path: f.Directive.Path},
				Kind:      FindingKind(f.Kind),
				Message:   f.Message,
			})
		}
		view.Findings = &findings
	}
	return view, nil
}

// GetGraph handles GET /graph. With ?overlay=selection the current selection is highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request, params GetGraphParams) {
	var overlay *graph.GraphOverlay
	if params.Overlay != nil && *params.Overlay == GetGraphParamsOverlaySelection {
		set := selection.New(s.Tree)
		outcomes, err := set.Replay(s.Program)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		overlay = &graph.GraphOverlay{Enabled: set.Paths()}
		for _, o := range outcomes {
			if !o.Miss && o.Target != "" {
				overlay.Targets = append(overlay.Targets, o.Target)
			}
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Tree, overlay)))
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.Store != nil {
		names = s.Store.Paths()
	}
	s.writeJSON(w, http.StatusOK, names)
}

// CreateRun handles POST /runs. The request blocks until the trace is closed.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "runs are not enabled on this server", http.StatusServiceUnavailable)
		return
	}
	var body CreateRunJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("run: invalid request body", "err", err)
		return
	}
	if body.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	var program domain.Program
	if body.Directives != nil {
		var err error
		if program, err = domain.ParseProgram(*body.Directives); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	var steps uint64
	if body.Steps != nil {
		var err error
		if steps, err = safecast.Conv[uint64](*body.Steps); err != nil {
			http.Error(w, "steps must not be negative", http.StatusBadRequest)
			return
		}
	}

	summary, err := s.Runner.Run(r.Context(), body.Name, program, steps)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, memory.ErrBusy):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidDirective):
			status = http.StatusBadRequest
		}
		s.Logger.Error("run failed", "name", body.Name, "err", err)
		http.Error(w, err.Error(), status)
		return
	}
	s.Logger.Info("run finished", "name", body.Name, "steps", summary.Steps, "truncated", summary.Truncated)

	resp := RunSummary{
		Name:      body.Name,
		Format:    summary.Format,
		Policy:    summary.Policy,
		Signals:   summary.Signals,
		Truncated: summary.Truncated,
	}
	if resp.Steps, err = safecast.Conv[int64](summary.Steps); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if resp.LastTime, err = safecast.Conv[int64](summary.LastTime); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(summary.Metrics) > 0 {
		resp.Metrics = &summary.Metrics
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// GetRun handles GET /runs/{name}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request, name string) {
	if s.Store == nil {
		http.Error(w, "no trace store", http.StatusNotFound)
		return
	}
	trace, ok := s.Store.Get(name)
	if !ok {
		http.Error(w, "trace not found", http.StatusNotFound)
		return
	}
	resp := TraceSummary{
		Name:    name,
		Closed:  trace.Closed,
		Signals: make([]string, 0, len(trace.Header.Signals)),
		Records: len(trace.Records),
	}
	for _, sig := range trace.Header.Signals {
		resp.Signals = append(resp.Signals, sig.Path)
	}
	times := trace.Times()
	resp.Dumps = len(times)
	if len(times) > 0 {
		last, err := safecast.Conv[int64](times[len(times)-1])
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.LastTime = &last
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
