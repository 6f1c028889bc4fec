package main

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/YuminosukeSato/tabreg/internal/config"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tabreg configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "tabreg.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			c, err := cfgpkg.Load("")
			if err != nil {
				return err
			}
			if err := cfgpkg.Save(c, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	return configCmd
}
