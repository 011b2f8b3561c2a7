package commands

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/conversation"
	"github.com/diogo/concierge/internal/tui"
)

// testEnv bundles fake dependencies and captured output
type testEnv struct {
	deps    *Dependencies
	client  *api.MockClient
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	fileCfg config.Config

	clientCfgs []config.Config
	copied     []string
	chatOpts   *tui.Options
}

func newTestEnv() *testEnv {
	env := &testEnv{
		client:  &api.MockClient{},
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		fileCfg: config.DefaultConfig(),
	}

	env.deps = &Dependencies{
		NewClient: func(cfg config.Config, logger zerolog.Logger) (api.ChatAPI, error) {
			env.clientCfgs = append(env.clientCfgs, cfg)
			return env.client, nil
		},
		RunChat: func(ctx context.Context, client api.ChatAPI, opts tui.Options) (*conversation.Session, error) {
			env.chatOpts = &opts
			return conversation.NewSession(client, opts.SessionOptions...), nil
		},
		LoadConfig: func() (config.Config, error) {
			return env.fileCfg, nil
		},
		CopyToClipboard: func(text string) error {
			env.copied = append(env.copied, text)
			return nil
		},
		IsTTY:      func() bool { return false },
		StdinPiped: func() bool { return false },
		In:         strings.NewReader(""),
		Out:        env.out,
		Err:        env.errOut,
	}
	return env
}

func (e *testEnv) execute(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}
