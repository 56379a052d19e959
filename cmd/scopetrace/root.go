package main

import (
	"fmt"
	"os"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scopetrace",
	Short: "scopetrace records selected signals of a simulated model into waveform files",
	Long: `scopetrace drives a reference model over simulated time and dumps the signals chosen
by dumpvars directives ("depth:path") into VCD, SAIF, JSONL, wavepack, Redis or memory sinks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Run configuration file (.yaml, .yml or .toml; default ./scopetrace.yaml if present)")
	pf.StringP("model", "m", "", "Reference model kind (counter, shiftchain)")
	pf.StringSliceP("dumpvars", "d", nil, "Directive \"depth:path\", repeatable; depth 0 traces the whole subtree")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("log-format", "", "Log format (text|json)")
	pf.Bool("debug", false, "Enable debug logging")
}

// runOptions collects the persistent flags and the flags of cmd into cli.RunOptions.
func runOptions(cmd *cobra.Command) cli.RunOptions {
	flags := cmd.Flags()
	opts := cli.RunOptions{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Model, _ = flags.GetString("model")
	opts.Directives, _ = flags.GetStringSlice("dumpvars")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.LogFormat, _ = flags.GetString("log-format")
	opts.Debug, _ = flags.GetBool("debug")

	if flags.Lookup("output") != nil {
		opts.Output, _ = flags.GetString("output")
		opts.Format, _ = flags.GetString("format")
		opts.Policy, _ = flags.GetString("policy")
		opts.Steps, _ = flags.GetUint64("steps")
		opts.Metrics, _ = flags.GetBool("metrics")
		opts.Quiet, _ = flags.GetBool("quiet")
	}
	return opts
}
