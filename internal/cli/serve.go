package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// StoreRunner traces the configured model into a shared memory store, one trace
// per name. Runs are metered on Registry when it is set.
type StoreRunner struct {
	Config   *config.Config
	Store    *memory.Store
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// Run traces name with program, or the configured program when it is empty, for
// steps dumps, or the configured count when zero.
func (r *StoreRunner) Run(ctx context.Context, name string, program domain.Program, steps uint64) (tui.RunSummary, error) {
	cfg := *r.Config
	cfg.Output = name
	cfg.Format = "memory"
	cfg.Metrics.Enabled = r.Registry != nil
	if steps > 0 {
		cfg.Steps = steps
	}
	if len(program) > 0 {
		cfg.Directives = make([]any, 0, len(program))
		for _, d := range program {
			cfg.Directives = append(cfg.Directives, d.String())
		}
	}
	return RunTrace(ctx, Session{
		Config:   &cfg,
		Logger:   r.Logger,
		Out:      io.Discard,
		Quiet:    true,
		Registry: r.Registry,
		Store:    r.Store,
	})
}
