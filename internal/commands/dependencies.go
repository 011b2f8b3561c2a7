package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/tui"
)

// ClientFactory builds the service client for a resolved configuration
type ClientFactory func(cfg config.Config, logger zerolog.Logger) (api.ChatAPI, error)

// ChatRunner runs the interactive chat and returns its Session on exit
type ChatRunner func(ctx context.Context, client api.ChatAPI, opts tui.Options) (*conversation.Session, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	NewClient ClientFactory
	RunChat   ChatRunner

	// LoadConfig returns file and environment configuration before flags apply
	LoadConfig func() (config.Config, error)

	// CopyToClipboard writes text to the system clipboard
	CopyToClipboard func(text string) error

	// IsTTY reports whether Out is a terminal; decorated output is used only then
	IsTTY func() bool
	// StdinPiped reports whether In carries piped input
	StdinPiped func() bool

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:       newAPIClient,
		RunChat:         tui.RunChat,
		LoadConfig:      config.LoadConfig,
		CopyToClipboard: clipboard.WriteAll,
		IsTTY:           isStdoutTTY,
		StdinPiped:      isStdinPiped,
		In:              os.Stdin,
		Out:             os.Stdout,
		Err:             os.Stderr,
	}
}

func newAPIClient(cfg config.Config, logger zerolog.Logger) (api.ChatAPI, error) {
	return api.NewClient(cfg.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithClientProfile(cfg.ClientProfile),
		api.WithLogger(logger),
	)
}

// closeClient releases clients that hold connections
func closeClient(client api.ChatAPI) {
	if c, ok := client.(interface{ Close() }); ok {
		c.Close()
	}
}

func isStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
