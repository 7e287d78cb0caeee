// mecoai - terminal client for a retrieval-augmented chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/cli"
	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/history"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/logging"
	"github.com/danniesim/mecoai-chat/internal/store"
	"github.com/danniesim/mecoai-chat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		if err := cli.NewApp(config.Default(), nil, nil).Version(args); err != nil {
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	configPath := args.ConfigPath
	if configPath == "" {
		configPath, _ = config.ConfigPath()
	}
	cfg, err := loadConfig(configPath, args)
	if err != nil {
		err = &cli.ConfigError{Path: configPath, Err: err}
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}
	config.SetGlobal(cfg)

	log, closeLog, err := logging.New(cfg, logging.Options{Console: args.Verbose && cmd != cli.CmdTUI})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] file logging disabled: %v\n", err)
		log, closeLog = zap.NewNop(), func() error { return nil }
	}
	defer closeLog()
	log.Info("starting", zap.String("command", cmd.String()), zap.String("version", Version), zap.String("base_url", cfg.Server.BaseURL))

	client := api.NewClient(&api.ClientConfig{
		BaseURL:   cfg.Server.BaseURL,
		Timeout:   cfg.RequestTimeout(),
		UserAgent: cfg.Server.UserAgent,
		Headers:   cfg.Server.Headers,
		Logger:    log,
	})

	if cmd == cli.CmdTUI {
		if err := runTUI(cfg, configPath, client, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
			return cli.ExitGeneralError
		}
		return cli.ExitSuccess
	}

	// The chat REPL handles Ctrl+C per answer, so only SIGTERM ends it.
	signals := []os.Signal{syscall.SIGTERM}
	if cmd != cli.CmdChat {
		signals = append(signals, os.Interrupt)
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	app := cli.NewApp(cfg, log, client)
	if err := app.Run(ctx, cmd, args); err != nil {
		log.Warn("command failed", zap.String("command", cmd.String()), zap.Error(err))
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(path string, args cli.Args) (*config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if args.URL != "" {
		cfg.Server.BaseURL = args.URL
	}
	if args.NoMarkdown {
		cfg.UI.Markdown = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTUI starts the full-screen chat view.
func runTUI(cfg *config.Config, configPath string, client *api.Client, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(client, store.Options{
		Logger:    log,
		NoticeTTL: cfg.NoticeTTL(),
		Context:   ctx,
	})
	defer st.Close()

	m := chat.New(chat.Deps{
		Store:      st,
		Runner:     lifecycle.NewRunner(st, client, lifecycle.NewController(), log),
		Pager:      history.NewPager(st, client, cfg.History.PageSize, log),
		Backend:    client,
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
