// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// FrontendSettings is the UI and feature configuration served by the
// backend. It is read once at startup.
type FrontendSettings struct {
	AuthEnabled                 bool       `json:"auth_enabled"`
	FeedbackEnabled             bool       `json:"feedback_enabled"`
	UI                          UISettings `json:"ui"`
	SanitizeAnswer              bool       `json:"sanitize_answer"`
	AppInsightsConnectionString string     `json:"applicationinsights_connection_string,omitempty"`
}

// UISettings holds the branding strings shown in the header and splash.
type UISettings struct {
	Title           string `json:"title"`
	ChatTitle       string `json:"chat_title"`
	ChatDescription string `json:"chat_description"`
	Logo            string `json:"logo,omitempty"`
	ShowShareButton bool   `json:"show_share_button"`
}

// Title returns the header title, falling back to def.
func (s *FrontendSettings) Title(def string) string {
	if s == nil || s.UI.Title == "" {
		return def
	}
	return s.UI.Title
}
