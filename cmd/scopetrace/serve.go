package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/scopetrace"
	httpAdapter "github.com/aretw0/scopetrace/internal/adapters/http"
	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/adapters/metrics"
	"github.com/aretw0/scopetrace/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scope tree and selection over HTTP",
	Long: `Exposes /scopes, /selection, /selection/preview, /graph, /runs and /metrics
for the configured model. POST /runs traces the model into memory; its sink
metrics are served on /metrics. The API is described at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		cfg, err := cli.LoadConfig(opts)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg, false)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Serve.Addr = addr
		}

		handler, err := newServeHandler(cfg, logger)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		g, ctx := errgroup.WithContext(signals.Context())

		g.Go(func() error {
			logger.Info("server listening", "addr", srv.Addr, "model", cfg.Model.Kind)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s scope tree on http://%s\n", cfg.Model.Kind, srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("server stopped")
			return nil
		})
		return g.Wait()
	},
}

// newServeHandler builds the API for cfg. Runs share one memory store and one
// registry, which also carries the Go and process collectors.
func newServeHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	set, _, err := cli.Inspect(cfg)
	if err != nil {
		return nil, err
	}
	program, err := cfg.Program()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if _, err := metrics.NewCollector(reg); err != nil {
		return nil, err
	}
	store := memory.NewStore()

	return httpAdapter.NewHandler(&httpAdapter.Server{
		Tree:     set.Tree(),
		Program:  program,
		Version:  scopetrace.Version,
		Gatherer: reg,
		Logger:   logger,
		Runner:   &cli.StoreRunner{Config: cfg, Store: store, Registry: reg, Logger: logger},
		Store:    store,
	}), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}
