package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yacobolo/tokenforge/internal/export"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the built-in export targets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILENAME\tDESCRIPTION")
		for _, t := range export.Targets() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Filename, t.Label)
		}
		return tw.Flush()
	},
}
