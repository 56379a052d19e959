package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/adapters/metrics"
	"github.com/aretw0/scopetrace/pkg/registry"
	"github.com/aretw0/scopetrace/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// Session carries the collaborators of one run.
type Session struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
	Quiet  bool

	// Registry receives the sink metrics when metrics are enabled. A nil
	// Registry gets a private one for the run. Totals reported in the summary
	// are cumulative over everything registered on it.
	Registry *prometheus.Registry
	// Store receives traces of the memory format. Without one the memory
	// format is refused, since nothing could read the trace back.
	Store *memory.Store
}

// ErrNoStore is returned for the memory format when the session has no store.
var ErrNoStore = errors.New("memory format needs an embedding store; use serve /runs or a file output")

// RunTrace drives the configured model for the configured number of steps into the
// configured output. A cancelled context truncates the run; the trace is still closed.
func RunTrace(ctx context.Context, s Session) (tui.RunSummary, error) {
	cfg := s.Config
	var summary tui.RunSummary

	m, err := createModel(cfg)
	if err != nil {
		return summary, err
	}

	var collector *metrics.Collector
	reg := s.Registry
	if cfg.Metrics.Enabled {
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		if collector, err = metrics.NewCollector(reg); err != nil {
			return summary, err
		}
	}

	tr, format, err := createTracer(cfg, m, registry.Default(s.Store), collector, s.Logger)
	if err != nil {
		return summary, err
	}
	if format == "memory" && s.Store == nil {
		return summary, ErrNoStore
	}
	if err := tr.Open(cfg.Output); err != nil {
		return summary, err
	}
	if !s.Quiet {
		printSystemMessage(s.Out, "tracing %s into %s (%s)", cfg.Model.Kind, cfg.Output, format)
	}

	r := runner.New(
		runner.WithSteps(cfg.Steps),
		runner.WithStart(cfg.Start),
		runner.WithIncrement(cfg.Increment),
		runner.WithLogger(s.Logger),
	)
	res, err := r.Run(ctx, m, tr)

	summary = tui.RunSummary{
		Output:    cfg.Output,
		Format:    format,
		Policy:    cfg.Policy,
		Signals:   len(tr.Signals()),
		Steps:     res.Steps,
		LastTime:  res.LastTime,
		Truncated: res.Truncated,
	}
	if summary.Policy == "" {
		summary.Policy = "sink default"
	}
	if collector != nil {
		totals, gatherErr := metrics.Totals(reg)
		if gatherErr != nil {
			return summary, errors.Join(err, gatherErr)
		}
		summary.Metrics = totals
	}
	return summary, err
}
