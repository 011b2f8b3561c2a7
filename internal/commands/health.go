package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/models"
)

func newHealthCmd(a *app) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the concierge service is reachable",
		Long: `Probe GET /health and print the connection state.

Any 2xx answer counts as connected. The command exits non-zero when the
service is disconnected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHealth(cmd.Context(), asYAML)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the health report as YAML")
	return cmd
}

func (a *app) runHealth(ctx context.Context, asYAML bool) error {
	client, err := a.deps.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeClient(client)

	session := conversation.NewSession(client, a.sessionOptions()...)
	result := session.CheckHealth(ctx)

	if result.Err != nil {
		fmt.Fprintf(a.deps.Out, "%s  %s\n", errorStyle.Render("○ "+result.State.String()), a.cfg.BaseURL)
		return fmt.Errorf("service unavailable: %w", result.Err)
	}

	if asYAML {
		data, err := yaml.Marshal(result.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal health report: %w", err)
		}
		_, err = a.deps.Out.Write(data)
		return err
	}

	fmt.Fprint(a.deps.Out, formatHealth(a.cfg.BaseURL, result.State, result.Report))
	return nil
}

// formatHealth renders a connected health report for humans
func formatHealth(baseURL string, state models.ConnectionState, report *models.HealthReport) string {
	line := fmt.Sprintf("%s  %s", successStyle.Render("● "+state.String()), baseURL)
	if report == nil {
		return line + "\n"
	}

	line += dimStyle.Render(fmt.Sprintf("  (%s)", report.Latency.Round(time.Millisecond)))
	out := line + "\n"

	if report.Status != "" {
		out += fmt.Sprintf("  Status:     %s\n", report.Status)
	}
	if report.Timestamp != nil {
		out += fmt.Sprintf("  Timestamp:  %s\n", report.Timestamp.Format(time.RFC3339))
	}
	if s := report.Stats; s != nil {
		out += fmt.Sprintf("  Orders:     %d\n", s.Orders)
		out += fmt.Sprintf("  Requests:   %d\n", s.Requests)
		out += fmt.Sprintf("  Menu items: %d\n", s.MenuItems)
	}
	return out
}
