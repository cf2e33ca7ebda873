package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/streamchat/internal/config"
)

// NewConfigCmd creates the config command. Without a subcommand it opens
// the interactive settings editor.
func NewConfigCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration",
		Long: `Show or edit the configuration.

Without a subcommand an interactive menu edits the persisted options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			return deps.RunSettings(cfg, path)
		},
	}

	cmd.AddCommand(newConfigShowCmd(deps, global))
	cmd.AddCommand(newConfigPathCmd(deps))
	cmd.AddCommand(newConfigInitCmd(deps, global))

	return cmd
}

func newConfigShowCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(deps, global)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			values := config.Describe(cfg)
			keys := make([]string, 0, len(values))
			for k := range values {
				if k == "headers" {
					continue
				}
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				fmt.Fprintf(deps.Stdout, "%s = %v\n", k, values[k])
			}

			if len(cfg.Headers) > 0 {
				names := make([]string, 0, len(cfg.Headers))
				for name := range cfg.Headers {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(deps.Stdout, "headers.%s = %s\n", name, maskValue(cfg.Headers[name]))
				}
			}
			return nil
		},
	}
}

func newConfigPathCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	}
}

func newConfigInitCmd(deps *Dependencies, global *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.DefaultConfig()
			if global.endpoint != "" {
				cfg.Endpoint = global.endpoint
			}
			if global.logLevel != "" {
				cfg.Log.Level = global.logLevel
			}

			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(deps.Stdout, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// maskValue hides all but the last four characters of a header value
func maskValue(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
