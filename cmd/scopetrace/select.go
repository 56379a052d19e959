package main

import (
	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select [depth:path...]",
	Short: "Preview the selection made by a set of directives",
	Long: `Replays the directives (arguments, --dumpvars or the configuration file) against the
model and reports what each one enabled. Nothing is traced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd)
		if len(args) > 0 {
			opts.Directives = append(opts.Directives, args...)
		}
		cfg, err := cli.LoadConfig(opts)
		if err != nil {
			return err
		}
		set, outcomes, err := cli.Inspect(cfg)
		if err != nil {
			return err
		}
		return tui.WriteReport(cmd.OutOrStdout(), tui.SelectionReport(set, outcomes))
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
