// Package commands provides CLI commands for concierge.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/logging"
	"github.com/diogo/concierge/internal/render"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	baseURL   string
	sessionID string
	logLevel  string
	logFile   string
}

// app carries the resolved configuration from PersistentPreRunE to the commands
type app struct {
	deps   *Dependencies
	flags  globalFlags
	cfg    config.Config
	logger zerolog.Logger
	closer io.Closer
}

// NewRootCmd creates the command tree wired to deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps, logger: zerolog.Nop()}

	var (
		outputFlag string
		fileFlag   string
	)

	cmd := &cobra.Command{
		Use:   "concierge [prompt]",
		Short: "Terminal client for the resort concierge chat service",
		Long: `concierge talks to a resort concierge chat service. Guests ask questions,
order food or request room service and the backend routes each message to
the right agent.

Examples:
  concierge chat                          Start interactive chat
  concierge "Show me the menu"            Send a single message
  concierge -f request.txt                Read the message from a file
  echo "I need towels" | concierge        Read the message from stdin
  concierge "Menu please" -o menu.md      Save the reply to a file
  concierge health                        Check the backend
  concierge devserver                     Run a local stub backend`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Out, "concierge %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if fileFlag != "" {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return a.runQuery(cmd.Context(), string(data), outputFlag)
			}

			if len(args) > 0 {
				return a.runQuery(cmd.Context(), args[0], outputFlag)
			}

			if deps.StdinPiped() {
				data, err := io.ReadAll(deps.In)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return a.runQuery(cmd.Context(), string(data), outputFlag)
			}

			return cmd.Help()
		},
	}

	cmd.SetIn(deps.In)
	cmd.SetOut(deps.Out)
	cmd.SetErr(deps.Err)

	cmd.PersistentFlags().StringVar(&a.flags.baseURL, "base-url", "", "Concierge service URL (default "+config.DefaultConfig().BaseURL+")")
	cmd.PersistentFlags().StringVarP(&a.flags.sessionID, "session", "s", "", "Session id sent with every request")
	cmd.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	cmd.PersistentFlags().StringVar(&a.flags.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read message from file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		newChatCmd(a),
		newHealthCmd(a),
		newConfigCmd(a),
		newDevserverCmd(a),
	)

	return cmd
}

var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// setup resolves configuration (defaults < file < env < flags) and the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}

	if a.flags.baseURL != "" {
		cfg.BaseURL = a.flags.baseURL
	}
	if a.flags.sessionID != "" {
		cfg.SessionID = a.flags.sessionID
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if a.flags.logFile != "" {
		cfg.LogFile = a.flags.logFile
	}

	if !underConfigCmd(cmd) {
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := validateAppearance(cfg); err != nil {
			return err
		}
	}
	a.cfg = cfg

	opts := logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Writer:  a.deps.Err,
		Console: true,
	}
	// The chat screen owns the terminal; logs go to the file or nowhere.
	if cmd.Name() == "chat" && opts.File == "" {
		opts.Writer = io.Discard
	}

	closer, err := logging.Setup(opts)
	if err != nil {
		return err
	}
	a.closer = closer
	a.logger = log.Logger
	return nil
}

// validateAppearance rejects a markdown style or TUI theme that would
// otherwise be silently replaced by the default
func validateAppearance(cfg config.Config) error {
	if style := cfg.Markdown.Style; style != "" && !render.IsBuiltinStyle(style) {
		if _, err := os.Stat(style); err != nil {
			return fmt.Errorf("unknown markdown style %q (built-in: %s, or a path to a JSON style file)",
				style, strings.Join(render.ThemeNames(), ", "))
		}
	}
	if theme := cfg.TUITheme; theme != "" {
		if _, ok := render.GetTUIThemeByName(theme); !ok {
			return fmt.Errorf("unknown tui_theme %q (available: %s)",
				theme, strings.Join(render.TUIThemeNames(), ", "))
		}
	}
	return nil
}

// underConfigCmd reports whether cmd is "config" or one of its subcommands,
// which must work even when the stored configuration is invalid
func underConfigCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" {
			return true
		}
	}
	return false
}

func (a *app) teardown() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// sessionOptions maps the configuration onto conversation options
func (a *app) sessionOptions() []conversation.Option {
	return []conversation.Option{
		conversation.WithSessionID(a.cfg.SessionID),
		conversation.WithFallbackInRequests(a.cfg.IncludeFallbackInRequests),
		conversation.WithLogger(a.logger.With().Str("component", "conversation").Logger()),
	}
}
