package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/lasdev/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check lasdev configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a starter configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath(args)
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Load and validate a configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath(args)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if _, err := cfg.AliasTable(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("valid"), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func (a *app) configPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return defaultConfigPath
}
