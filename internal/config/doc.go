// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for mecoai-chat.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Backend URL, timeout and extra headers
//   - HistoryConfig: History page size and notice lifetime
//   - UIConfig: Markdown, theme and redraw settings
//   - LogConfig: Rotating log file settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (MECOAI_*)
//   - .env in the working directory
//   - ~/.mecoai/config.toml (or the file named by MECOAI_CONFIG)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(&api.ClientConfig{BaseURL: cfg.Server.BaseURL})
//
// Follow edits while the TUI runs:
//
//	config.Watch(ctx, path, func(c *config.Config) { program.Send(reloaded{c}) }, nil)
package config
