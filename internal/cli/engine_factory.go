package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/scopetrace"
	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/internal/scopetree"
	"github.com/aretw0/scopetrace/internal/selection"
	"github.com/aretw0/scopetrace/pkg/adapters/metrics"
	"github.com/aretw0/scopetrace/pkg/model"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/aretw0/scopetrace/pkg/registry"
)

// createModel builds the reference model named by the configuration.
func createModel(cfg *config.Config) (ports.Model, error) {
	m, err := model.New(cfg.Model.Kind, cfg.Model.Params)
	if err != nil {
		return nil, fmt.Errorf("error initializing model: %w", err)
	}
	return m, nil
}

// createTracer wires a Tracer with standard CLI conventions: the format follows the
// output extension unless forced, sink options come from the configuration, and the
// configured directives are issued once the model is attached.
func createTracer(cfg *config.Config, m ports.Model, reg *registry.Registry, collector *metrics.Collector, logger *slog.Logger) (*scopetrace.Tracer, string, error) {
	format, err := reg.Resolve(cfg.Format, cfg.Output)
	if err != nil {
		return nil, "", err
	}

	opts := []scopetrace.Option{
		scopetrace.WithLogger(logger),
		scopetrace.WithRegistry(reg),
		scopetrace.WithFormat(format),
		scopetrace.WithSinkOptions(cfg.SinkOptions(format)),
		scopetrace.WithTimescale(cfg.Timescale),
	}
	if collector != nil {
		opts = append(opts, scopetrace.WithMetrics(collector))
	}
	tr := scopetrace.New(opts...)

	if err := tr.Trace(m); err != nil {
		return nil, "", err
	}
	program, err := cfg.Program()
	if err != nil {
		return nil, "", err
	}
	for _, d := range program {
		if _, err := tr.Dumpvars(d.Depth, d.Path); err != nil {
			return nil, "", err
		}
	}
	return tr, format, nil
}

// Inspect builds the model tree and replays the configured program on it.
func Inspect(cfg *config.Config) (*selection.Set, []selection.Outcome, error) {
	m, err := createModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	tree, err := scopetree.FromModel(m)
	if err != nil {
		return nil, nil, err
	}
	program, err := cfg.Program()
	if err != nil {
		return nil, nil, err
	}
	set := selection.New(tree)
	outcomes, err := set.Replay(program)
	if err != nil {
		return nil, nil, err
	}
	return set, outcomes, nil
}
