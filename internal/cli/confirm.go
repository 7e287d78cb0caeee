// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// CONFIRMATION HANDLING
// =============================================================================

// ConfirmationOptions controls how a destructive action is confirmed.
type ConfirmationOptions struct {
	// Yes indicates --yes was passed (skip the prompt)
	Yes bool
	// JSONMode requires Yes, since JSON output never prompts
	JSONMode bool
	// Interactive is set when stdin is a terminal
	Interactive bool
}

// RequireConfirmation checks that the user confirmed a destructive action.
//
// Confirmation flow:
//  1. If opts.Yes is set, return true immediately
//  2. In JSON mode, return an error (--yes is required)
//  3. If stdin is not a terminal, return an error (can't prompt)
//  4. Otherwise show question and detail, then read a y/N answer from in
//
// Example:
//
//	ok, err := RequireConfirmation(in, out, "Are you sure you want to clear all chat history?",
//	    "All chat history will be permanently removed.", opts)
func RequireConfirmation(in io.Reader, out io.Writer, question, detail string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSONMode {
		return false, NewValidationError("confirmation", "", "use --yes for destructive actions in JSON mode")
	}
	if !opts.Interactive {
		return false, NewValidationError("confirmation", "", "stdin is not a terminal; use --yes")
	}

	fmt.Fprintln(out, WarningStyle.Render(question))
	if detail != "" {
		fmt.Fprintln(out, DimStyle.Render(detail))
	}
	return PromptYesNo(in, out, "Continue?"), nil
}

// PromptYesNo asks a yes/no question. Anything but y or yes is a no.
func PromptYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}

// ShowCancellationMessage prints the standard cancellation line.
func ShowCancellationMessage(out io.Writer) {
	fmt.Fprintln(out, DimStyle.Render("Cancelled."))
}
