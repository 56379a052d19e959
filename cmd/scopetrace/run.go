package main

import (
	"fmt"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/aretw0/scopetrace/pkg/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trace a reference model into a waveform file",
	Long: `Evaluates the model once per step, dumps the selected signals, advances the time and
toggles the clock. Ctrl+C stops the run early; the trace is closed and stays valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		cfg, err := cli.LoadConfig(opts)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg, opts.Quiet)
		if err != nil {
			return err
		}

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()

		out := cmd.OutOrStdout()
		if !opts.Quiet && tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}

		summary, err := cli.RunTrace(signals.Context(), cli.Session{
			Config: cfg,
			Logger: logger,
			Out:    out,
			Quiet:  opts.Quiet,
		})
		if err != nil {
			return err
		}
		if !opts.Quiet {
			tui.SummaryTable(out, summary)
			msg := "trace written to " + summary.Output
			if summary.Truncated {
				msg = "run interrupted, truncated trace written to " + summary.Output
			}
			fmt.Fprintln(out, tui.Status(out, !summary.Truncated, msg))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringP("output", "o", "", "Output path; the extension picks the format (.vcd, .saif, .jsonl, .wpk)")
	f.StringP("format", "f", "", "Force a format (vcd, saif, jsonl, wavepack, redis, memory)")
	f.String("policy", "", "Dump policy (delta|full); default depends on the format")
	f.Uint64P("steps", "n", 0, "Number of dumps (default 21)")
	f.Bool("metrics", false, "Instrument the sink with Prometheus metrics")
	f.BoolP("quiet", "q", false, "Only report errors")
}
