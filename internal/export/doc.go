// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes stored conversations to files.
//
// Citations carried by tool messages are rendered as a numbered source
// list under the answer they belong to. Error messages are kept so an
// export matches what the transcript showed.
//
// # Key Types
//
//   - Exporter: Converts a conversation to one format
//   - Options: Output directory, metadata and theme
//
// # Supported Formats
//
//   - markdown: Human-readable with YAML front matter
//   - json: The conversation as stored by the backend
//   - html: Single file with embedded CSS
//
// # Usage
//
//	exporter, err := export.ForFormat("markdown", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ToFile(conv, exporter, &export.Options{OutputDir: "."})
package export
