// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}
	var sb strings.Builder
	name := title(conv)

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(name))
		fmt.Fprintf(&sb, "id: %s\n", conv.ID)
		if conv.Date != "" {
			fmt.Fprintf(&sb, "date: %s\n", escapeYAML(conv.Date))
		}
		fmt.Fprintf(&sb, "messages: %d\n", len(conv.Messages))
		fmt.Fprintf(&sb, "exported: %s\n", e.options.now().Format(time.RFC3339))
		sb.WriteString("generator: mecoai\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(name))

	first := true
	for i, msg := range conv.Messages {
		// Tool messages are listed as sources under their answer.
		if msg.Role == model.RoleTool {
			continue
		}
		if !first {
			sb.WriteString("---\n\n")
		}
		first = false

		label := msg.Role.DisplayName()
		if ts := formatShortTimestamp(msg.Date); e.options.IncludeTimestamps && ts != "" {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, ts)
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		content := strings.TrimSpace(msg.Content)
		if msg.IsError() {
			content = "> " + strings.ReplaceAll(content, "\n", "\n> ")
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")

		if cites := sources(conv.Messages, i); len(cites) > 0 {
			sb.WriteString(e.formatSources(cites))
			sb.WriteString("\n")
		}
		if msg.Feedback != "" && msg.Feedback != model.FeedbackNeutral {
			fmt.Fprintf(&sb, "<sub>Feedback: %s</sub>\n\n", msg.Feedback)
		}
	}

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Exported from mecoai on %s*\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatSources renders a numbered source list. Citations without an
// openable link are listed by title only.
func (e *MarkdownExporter) formatSources(cites []model.Citation) string {
	var sb strings.Builder
	sb.WriteString("**Sources**\n\n")
	for i, c := range cites {
		label := escapeMarkdown(c.DisplayTitle(i + 1))
		if link, ok := c.Link(); ok {
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, label, link)
		} else {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, label)
		}
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var markdownEscaper = strings.NewReplacer(
	"#", `\#`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
)

// escapeYAML quotes a front matter value when it carries YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		s = strings.ReplaceAll(s, "\n", `\n`)
		s = strings.ReplaceAll(s, "\r", `\r`)
		return `"` + s + `"`
	}
	return s
}
