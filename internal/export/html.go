// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a single HTML file with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}
	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	name := html.EscapeString(title(conv))

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", name)
	sb.WriteString("    <meta name=\"generator\" content=\"mecoai\">\n")
	sb.WriteString(styleSheet)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString("        <header class=\"header\">\n")
		fmt.Fprintf(&sb, "            <h1>%s</h1>\n", name)
		sb.WriteString("            <div class=\"metadata\">\n")
		if conv.Date != "" {
			fmt.Fprintf(&sb, "                <span><strong>Created:</strong> %s</span>\n", html.EscapeString(formatTimestamp(conv.Date)))
		}
		fmt.Fprintf(&sb, "                <span><strong>Messages:</strong> %d</span>\n", len(conv.Messages))
		sb.WriteString("            </div>\n        </header>\n")
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for i, msg := range conv.Messages {
		if msg.Role == model.RoleTool {
			continue
		}
		sb.WriteString(e.renderMessage(msg, sources(conv.Messages, i)))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>mecoai</strong> on %s</p>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n    </div>\n</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderMessage(msg model.ChatMessage, cites []model.Citation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "            <div class=\"message %s-message\">\n", html.EscapeString(string(msg.Role)))
	sb.WriteString("                <div class=\"message-header\">\n")
	fmt.Fprintf(&sb, "                    <span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Role.DisplayName()))
	if ts := formatShortTimestamp(msg.Date); e.options.IncludeTimestamps && ts != "" {
		fmt.Fprintf(&sb, "                    <span class=\"timestamp\">%s</span>\n", ts)
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(formatContent(msg.Content))
	sb.WriteString("\n                </div>\n")

	if len(cites) > 0 {
		sb.WriteString("                <ol class=\"sources\">\n")
		for n, c := range cites {
			label := html.EscapeString(c.DisplayTitle(n + 1))
			if link, ok := c.Link(); ok {
				fmt.Fprintf(&sb, "                    <li><a href=\"%s\">%s</a></li>\n", html.EscapeString(link), label)
			} else {
				fmt.Fprintf(&sb, "                    <li>%s</li>\n", label)
			}
		}
		sb.WriteString("                </ol>\n")
	}
	sb.WriteString("            </div>\n")
	return sb.String()
}

// blockMarker stands in for an extracted code block. NULs are stripped
// from message text first.
const blockMarker = "\x00code"

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// formatContent escapes message text and turns code fences, inline code
// and blank-line separated paragraphs into HTML.
func formatContent(content string) string {
	content = html.EscapeString(strings.TrimSpace(strings.ReplaceAll(content, "\x00", "")))

	var blocks []string
	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		lang := parts[1]
		label := ""
		if lang != "" {
			label = fmt.Sprintf("<div class=\"code-lang\">%s</div>", lang)
		}
		blocks = append(blocks, fmt.Sprintf("<div class=\"code-block\">%s<pre><code class=\"language-%s\">%s</code></pre></div>",
			label, lang, strings.TrimSpace(parts[2])))
		return "\n\n" + blockMarker + strconv.Itoa(len(blocks)-1) + "\n\n"
	})
	content = inlineCodeRegex.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	var out []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(para, blockMarker); ok {
			if idx, err := strconv.Atoi(rest); err == nil && idx < len(blocks) {
				out = append(out, blocks[idx])
				continue
			}
		}
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>\n")+"</p>")
	}
	return strings.Join(out, "\n")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const styleSheet = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        .dark-theme {
            --bg: #1a1b26; --panel: #24283b; --text: #c0caf5; --muted: #565f89;
            --border: #414868; --accent: #7aa2f7; --error: #f7768e; --code: #16161e;
        }
        .light-theme {
            --bg: #ffffff; --panel: #f7f8fa; --text: #24292e; --muted: #6a737d;
            --border: #e1e4e8; --accent: #0366d6; --error: #d73a49; --code: #f6f8fa;
        }
        body {
            font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif;
            line-height: 1.6; color: var(--text); background: var(--bg); padding: 20px;
        }
        .container { max-width: 900px; margin: 0 auto; background: var(--panel); border-radius: 12px; }
        .header { padding: 32px; border-bottom: 2px solid var(--border); }
        .header h1 { font-size: 26px; margin-bottom: 12px; }
        .metadata { display: flex; gap: 16px; font-size: 14px; color: var(--muted); }
        .conversation { padding: 24px 32px; }
        .message { padding: 16px 0; border-bottom: 1px solid var(--border); }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 8px; }
        .role-label { font-weight: 600; color: var(--accent); }
        .error-message .role-label, .error-message .message-content { color: var(--error); }
        .timestamp { font-size: 12px; color: var(--muted); }
        .message-content p { margin-bottom: 10px; }
        .code-block { margin: 10px 0; background: var(--code); border-radius: 6px; overflow-x: auto; }
        .code-lang { font-size: 11px; color: var(--muted); padding: 4px 12px; }
        pre { padding: 12px; font-family: "SF Mono", Monaco, monospace; font-size: 14px; }
        .inline-code { background: var(--code); padding: 1px 4px; border-radius: 3px; }
        .sources { margin: 8px 0 0 24px; font-size: 14px; color: var(--muted); }
        .sources a { color: var(--accent); }
        .footer { padding: 16px 32px; font-size: 13px; color: var(--muted); }
    </style>
`
