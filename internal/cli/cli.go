// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/danniesim/mecoai-chat/internal/export"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdHistory
	CmdSettings
	CmdVersion
	CmdHelp
)

// String returns the command name used in JSON output and logs.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdHistory:
		return "history"
	case CmdSettings:
		return "settings"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string // --url overrides server.base_url
	ConfigPath string // --config overrides the config file path
	Verbose    bool   // -v, --verbose also logs to stderr
	NoMarkdown bool   // --no-markdown prints answers as plain text
	JSON       bool   // --json for machine-readable output
	Yes        bool   // -y, --yes skips confirmation prompts

	// ask
	Query          string
	ConversationID string // -c, --conversation continues a stored conversation

	// history
	Subcommand string
	Params     []string
	Format     string // --format of history export
	Output     string // -o, --output file or directory of history export
}

// boolFlagNames never consume the following argument.
var boolFlagNames = []string{"v", "verbose", "no-markdown", "json", "y", "yes", "h", "help", "version"}

// knownFlags is every flag Parse accepts.
var knownFlags = map[string]bool{
	"url": true, "config": true, "conversation": true, "c": true,
	"v": true, "verbose": true, "no-markdown": true, "json": true,
	"y": true, "yes": true, "h": true, "help": true, "version": true,
	"format": true, "output": true, "o": true,
}

const usageText = `mecoai - terminal client for the chat backend

Usage:
  mecoai                          Start the TUI (default)
  mecoai tui                      Start the TUI
  mecoai ask <question...>        Ask one question and stream the answer
    -c, --conversation ID         Continue a stored conversation
  mecoai chat                     Interactive chat in the terminal
  mecoai history [list]           List stored conversations
  mecoai history show ID          Print a stored conversation
  mecoai history rename ID TITLE  Rename a conversation
  mecoai history delete ID        Delete a conversation
  mecoai history clear ID         Remove the messages of a conversation
  mecoai history clear-all        Delete every conversation
  mecoai history export ID        Export a conversation (stdout by default)
    --format FORMAT               markdown, json or html (default markdown)
    -o, --output PATH             File or directory to write
  mecoai settings                 Show backend settings and history status
  mecoai version                  Show version information

Global Flags:
  --url URL       Backend base URL (overrides server.base_url)
  --config PATH   Config file (default ~/.mecoai/config.toml)
  -v, --verbose   Also write logs to stderr
  --no-markdown   Print answers as plain text
  --json          Machine-readable output
  -y, --yes       Skip confirmation prompts

Chat Commands:
  /new            Start a new conversation
  /history        List stored conversations
  /open ID        Continue a stored conversation
  /clear          Remove the messages of the current conversation
  /help           Show chat commands
  /quit           Exit

Examples:
  mecoai ask "What is in the onboarding guide?"
  mecoai ask -c 3f0c... "And the second step?"
  mecoai history list --json
  mecoai history export 3f0c... --format html -o ./exports
  mecoai --url https://chat.example.com chat

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "mecoai version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name).
// Flags may appear anywhere. No command starts the TUI.
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlagNames...)
	args := Args{
		URL:            p.Flag("url"),
		ConfigPath:     p.Flag("config"),
		Verbose:        p.BoolFlag("v", "verbose"),
		NoMarkdown:     p.BoolFlag("no-markdown"),
		JSON:           p.BoolFlag("json"),
		Yes:            p.BoolFlag("y", "yes"),
		ConversationID: p.Flag("conversation", "c"),
		Format:         p.Flag("format"),
		Output:         p.Flag("output", "o"),
	}

	for _, name := range p.Names() {
		if !knownFlags[name] {
			return CmdHelp, args, NewValidationErrorWithExample("flag", "--"+name, "unknown flag", "mecoai help")
		}
	}
	if p.BoolFlag("h", "help") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}
	if p.PositionalCount() == 0 {
		return CmdTUI, args, nil
	}

	rest := p.PositionalFrom(1)
	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "tui":
		return CmdTUI, args, nil

	case "ask":
		args.Query = strings.TrimSpace(strings.Join(rest, " "))
		if args.Query == "" {
			return CmdAsk, args, ErrMissingArgument("question", `mecoai ask "What is in the onboarding guide?"`)
		}
		return CmdAsk, args, nil

	case "chat":
		return CmdChat, args, nil

	case "history":
		args.Subcommand = "list"
		if len(rest) > 0 {
			args.Subcommand = strings.ToLower(rest[0])
			args.Params = rest[1:]
		}
		return CmdHistory, args, validateHistory(args)

	case "settings":
		return CmdSettings, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, NewValidationErrorWithExample("command", cmd, "unknown command", "mecoai help")
	}
}

// validateHistory checks the arity of history subcommands.
func validateHistory(args Args) error {
	switch args.Subcommand {
	case "list", "ls", "clear-all":
		return nil
	case "show", "delete", "rm", "clear":
		if len(args.Params) != 1 {
			return ErrMissingArgument("conversation id", "mecoai history "+args.Subcommand+" ID")
		}
		return nil
	case "rename":
		if len(args.Params) < 2 {
			return ErrMissingArgument("title", "mecoai history rename ID New title")
		}
		return nil
	case "export":
		if len(args.Params) != 1 {
			return ErrMissingArgument("conversation id", "mecoai history export ID --format markdown")
		}
		if _, err := export.ForFormat(args.Format, nil); err != nil {
			return NewValidationErrorWithExample("format", args.Format, "use "+strings.Join(export.Formats, ", "), "mecoai history export ID --format html")
		}
		return nil
	default:
		return NewValidationErrorWithExample("history subcommand", args.Subcommand, "unknown subcommand", "mecoai history list")
	}
}
