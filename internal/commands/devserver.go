package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/devserver"
)

func newDevserverCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a stub concierge backend for local development",
		Long: `Serve POST /chat, GET /health and GET /menu with canned replies.

Messages are routed by keyword to the Restaurant, RoomService or Receptionist
agent. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDevserver(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", devserver.DefaultAddr, "Listen address")
	return cmd
}

func (a *app) runDevserver(ctx context.Context, addr string) error {
	srv := devserver.New(devserver.Config{
		Addr:   addr,
		Logger: a.logger.With().Str("component", "devserver").Logger(),
	})

	fmt.Fprintln(a.deps.Err, successStyle.Render("● Devserver listening on "+srv.Addr()))
	if err := srv.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.deps.Err, dimStyle.Render(fmt.Sprintf("Served %d chat requests", srv.Chats())))
	return nil
}
