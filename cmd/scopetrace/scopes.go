package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/presentation/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "List the scopes and signals of the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(runOptions(cmd))
		if err != nil {
			return err
		}
		set, _, err := cli.Inspect(cfg)
		if err != nil {
			return err
		}

		tree := set.Tree()
		out := cmd.OutOrStdout()
		format, _ := cmd.Flags().GetString("output-format")
		switch format {
		case "table":
			tui.ScopeTable(out, tree, set)
			return nil
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(tree.Nodes())
		case "yaml":
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(tree.Nodes())
		default:
			return fmt.Errorf("unknown output format %q (expected: table|json|yaml)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(scopesCmd)
	scopesCmd.Flags().String("output-format", "table", "Output format (table|json|yaml)")
}
