package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/history"
	"github.com/diogo/concierge/internal/render"
	"github.com/diogo/concierge/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	var (
		transcriptPath string
		exportDir      string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the concierge.

The whole conversation is sent with every message so the backend keeps context.
Use alt+1..9 for quick actions, /help for examples and /quit or Ctrl+C to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context(), transcriptPath, exportDir)
		},
	}

	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Write the conversation to this file on exit (.md or .json)")
	cmd.Flags().StringVar(&exportDir, "export-dir", ".", "Directory used by /export when no path is given")

	return cmd
}

func (a *app) runChat(ctx context.Context, transcriptPath, exportDir string) error {
	client, err := a.deps.NewClient(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeClient(client)

	tui.ApplyTheme(render.TUIThemeOrDefault(a.cfg.TUITheme))

	actions, err := config.LoadQuickActions()
	if err != nil {
		a.logger.Warn().Err(err).Msg("using default quick actions")
		actions = nil
	}

	session, err := a.deps.RunChat(ctx, client, tui.Options{
		SessionOptions: a.sessionOptions(),
		QuickActions:   actions,
		Render:         render.OptionsFromConfig(a.cfg.Markdown),
		ExportDir:      exportDir,
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if transcriptPath != "" {
		return a.saveTranscript(session, transcriptPath)
	}
	return nil
}

// saveTranscript writes the finished conversation, skipping empty sessions
func (a *app) saveTranscript(session *conversation.Session, path string) error {
	if session == nil || session.Len() == 0 {
		fmt.Fprintln(a.deps.Err, dimStyle.Render("No messages, transcript not written"))
		return nil
	}

	transcript := history.NewTranscript(session.SessionID(), session.History())
	if err := transcript.WriteFile(path, history.FormatForPath(path), history.DefaultExportOptions()); err != nil {
		return err
	}

	a.logger.Info().Str("path", path).Int("messages", session.Len()).Msg("transcript written")
	fmt.Fprintln(a.deps.Err, successStyle.Render(fmt.Sprintf("✓ Transcript saved to %s", path)))
	return nil
}
