package main

import (
	"fmt"

	"github.com/aretw0/scopetrace/internal/cli"
	"github.com/aretw0/scopetrace/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the scope tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the model hierarchy, with the selection highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(runOptions(cmd))
		if err != nil {
			return err
		}
		set, outcomes, err := cli.Inspect(cfg)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if plain, _ := cmd.Flags().GetBool("plain"); !plain {
			overlay = &graph.GraphOverlay{Enabled: set.Paths()}
			for _, o := range outcomes {
				if !o.Miss && o.Target != "" {
					overlay.Targets = append(overlay.Targets, o.Target)
				}
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(set.Tree(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("plain", false, "Do not highlight the selection")
}
