package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aretw0/scopetrace/internal/adapters/mcp"
	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/pkg/adapters/memory"
	"github.com/aretw0/scopetrace/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the scope tree of the configured model to MCP clients.

Tools: list_scopes, preview_selection, get_graph and run_trace (into memory).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(runOptions(cmd))
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg, false)
		if err != nil {
			return err
		}
		set, _, err := cli.Inspect(cfg)
		if err != nil {
			return err
		}
		program, err := cfg.Program()
		if err != nil {
			return err
		}

		store := memory.NewStore()
		srv := mcp.NewServer(set.Tree(), program, &cli.StoreRunner{Config: cfg, Store: store, Logger: logger}, logger)

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		switch transport {
		case "stdio":
			// stdout carries JSON-RPC
			log.SetOutput(os.Stderr)
			logger.Info("starting mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			signals := runner.NewSignalManager(cmd.Context())
			defer signals.Stop()
			return srv.ServeSSE(signals.Context(), port)
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport type (stdio, sse)")
	mcpCmd.Flags().Int("port", 8080, "Port for SSE server")
}
