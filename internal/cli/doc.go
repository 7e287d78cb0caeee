// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands.
//
// The commands share the TUI's state layer: each run bootstraps a store,
// drives turns through a lifecycle runner and prints what the store
// commits, so history and error handling behave the same on both
// surfaces.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed command-line arguments
//   - App: Runs a command against one backend with injectable stdio
//   - LineReader: Input source of the chat REPL
//   - JSONResponse: Envelope written by every --json command
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//	app := cli.NewApp(cfg, log, client)
//	err = app.Run(ctx, cmd, args)
//
// # Commands Overview
//
//   - ask: One question, answer streamed or rendered as markdown
//   - chat: Line-based REPL with /new, /history, /open and /clear
//   - history: list, show, rename, delete, clear, clear-all and export
//   - settings: Frontend settings and history status
//   - version: Build information
//
// All commands support --json.
package cli
