package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/render"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialise configuration",
		Long: `Configuration is read from ~/.concierge/config.json, then CONCIERGE_*
environment variables, then command-line flags.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as YAML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := a.cfg.ToYAML()
				if err != nil {
					return err
				}
				fmt.Fprint(a.deps.Out, out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.deps.Out, path)
				return nil
			},
		},
		newConfigInitCmd(a),
		&cobra.Command{
			Use:   "env",
			Short: "List the supported environment variables",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.EnvUsage()
			},
		},
		&cobra.Command{
			Use:   "themes",
			Short: "List markdown styles and TUI themes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(a.deps.Out, "Markdown styles:")
				for _, t := range render.AvailableThemes() {
					fmt.Fprintf(a.deps.Out, "  %-12s %s\n", t.Name, t.Description)
				}
				fmt.Fprintln(a.deps.Out, "TUI themes:")
				for _, t := range render.AvailableTUIThemes() {
					fmt.Fprintf(a.deps.Out, "  %-12s %s\n", t.Name, t.Description)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "profiles",
			Short: "List the TLS client profiles accepted in client_profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, name := range config.AvailableProfiles() {
					marker := "  "
					if strings.EqualFold(name, a.cfg.ClientProfile) {
						marker = "* "
					}
					fmt.Fprintln(a.deps.Out, marker+name)
				}
				return nil
			},
		},
	)

	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
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
			}

			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintln(a.deps.Out, successStyle.Render("✓ Wrote "+path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}
