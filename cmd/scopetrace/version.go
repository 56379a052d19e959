package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/scopetrace"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scopetrace",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scopetrace version %s\n", strings.TrimSpace(scopetrace.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
