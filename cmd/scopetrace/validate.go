package main

import (
	"fmt"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/aretw0/scopetrace/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the directives against the model",
	Long: `Reports directives that match nothing or only an ancestor of the requested path.
With --strict, directives that enable nothing new are reported too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(runOptions(cmd))
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

		report, err := validator.ValidateProgram(set.Tree(), program)
		if err != nil {
			return err
		}
		strict, _ := cmd.Flags().GetBool("strict")
		if err := report.Err(strict); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, tui.Status(out, true, fmt.Sprintf("directives are valid, %d signals selected", report.Signals)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Also fail on redundant directives")
}
