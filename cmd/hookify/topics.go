package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/hookify/backend/internal/domain/topic"
)

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List lesson topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TOPIC\tLABEL\tENTRY")
			for _, info := range topic.Infos() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Label, info.ID.EntrySymbol())
			}
			return tw.Flush()
		},
	}
}
