package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/advisor-ai/internal/model"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", opts.configPath, err)
			}

			cfg, err := model.DefaultConfig()
			if err != nil {
				return err
			}
			if opts.dbPath != "" {
				cfg.Storage.DBPath = opts.dbPath
			}
			if err := model.SaveConfig(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:       %s\n", opts.configPath)
			fmt.Fprintf(out, "backend:      %s (app %s, timeout %s)\n", cfg.Backend.BaseURL, cfg.Backend.AppName, cfg.Backend.Timeout())
			fmt.Fprintf(out, "mail method:  %s\n", cfg.Mail.Method)
			fmt.Fprintf(out, "database:     %s\n", cfg.Storage.DBPath)
			fmt.Fprintf(out, "log:          %s\n", orNone(cfg.Log.Path))
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
