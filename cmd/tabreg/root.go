package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tabreg",
		Short:         "Train and score regression models on tabular data",
		Long:          `tabreg splits a CSV dataset, fits a linear, decision tree or random forest regressor, and reports R2 and MSE on the held-out rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newKindsCmd(), newConfigCmd())
	return root
}
