// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/history"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/store"
)

// =============================================================================
// APP
// =============================================================================

// App runs the non-TUI commands against one backend.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Client *api.Client

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive is set when stdin is a terminal. It enables prompts and
	// line editing.
	Interactive bool
	// Styled is set when stdout is a terminal. It enables markdown.
	Styled bool
	// Width is the wrap width for rendered answers.
	Width int

	newLineReader func() LineReader
}

// NewApp creates an app wired to the process stdio.
func NewApp(cfg *config.Config, log *zap.Logger, client *api.Client) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Config:      cfg,
		Log:         log,
		Client:      client,
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: IsTTY(),
		Styled:      IsStdoutTTY(),
		Width:       GetTerminalWidth(),
	}
}

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	switch cmd {
	case CmdAsk:
		return a.Ask(ctx, args)
	case CmdChat:
		return a.Chat(ctx, args)
	case CmdHistory:
		return a.History(ctx, args)
	case CmdSettings:
		return a.Settings(ctx, args)
	case CmdVersion:
		return a.Version(args)
	case CmdHelp:
		PrintUsage(a.Out)
		return nil
	}
	return fmt.Errorf("command %s is not handled by the CLI", cmd)
}

// =============================================================================
// SESSION
// =============================================================================

// session is a bootstrapped store plus the runner that drives its turns.
type session struct {
	store  *store.Store
	runner *lifecycle.Runner
	pager  *history.Pager
}

// newSession bootstraps a store the same way the TUI does. A dialog
// raised by the bootstrap is printed as a warning unless quiet is set.
func (a *App) newSession(ctx context.Context, quiet bool) *session {
	st := store.New(a.Client, store.Options{
		Logger:    a.Log,
		NoticeTTL: a.Config.NoticeTTL(),
		Context:   ctx,
	})
	history.Bootstrap(ctx, st, a.Client, a.Log)

	if d := st.State().Dialog; d != nil && !quiet {
		fmt.Fprintf(a.Err, "%s %s\n", WarningStyle.Render("[WARN]"), d.Title)
		if d.Subtitle != "" {
			fmt.Fprintf(a.Err, "       %s\n", DimStyle.Render(d.Subtitle))
		}
		st.DismissDialog()
	}

	return &session{
		store:  st,
		runner: lifecycle.NewRunner(st, a.Client, lifecycle.NewController(), a.Log),
		pager:  history.NewPager(st, a.Client, a.Config.History.PageSize, a.Log),
	}
}

// close releases the session's notice timers.
func (s *session) close() {
	s.store.Close()
}

// loadAll pages through the whole history list.
func (s *session) loadAll(ctx context.Context) error {
	for {
		before := len(s.store.State().ChatHistory)
		if err := s.pager.FetchNext(ctx); err != nil {
			return err
		}
		if len(s.store.State().ChatHistory) == before {
			return nil
		}
	}
}

// =============================================================================
// VERSION
// =============================================================================

// Version prints version information.
func (a *App) Version(args Args) error {
	if args.JSON {
		return NewJSONResponse(CmdVersion.String(), VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Write(a.Out)
	}
	PrintVersion(a.Out)
	return nil
}
