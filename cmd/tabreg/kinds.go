package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/tabreg/experiment"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported model kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range experiment.Kinds() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", k, k.AlgorithmName())
			}
			return nil
		},
	}
}
