// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"
)

// Settings prints the backend's frontend settings and history status.
func (a *App) Settings(ctx context.Context, args Args) error {
	s := a.newSession(ctx, true)
	defer s.close()
	st := s.store.State()

	if args.JSON {
		return NewJSONResponse(CmdSettings.String(), SettingsData{
			BaseURL:  a.Client.BaseURL(),
			History:  st.CosmosDB,
			Settings: st.FrontendSettings,
		}).Write(a.Out)
	}

	const w = 18
	fmt.Fprintln(a.Out, TitleStyle.Render("Backend"))
	fmt.Fprintln(a.Out, RenderSeparator())
	fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("URL", w), ValueStyle.Render(a.Client.BaseURL()))

	status := "disabled"
	if st.HistoryEnabled() {
		status = "ok"
	}
	fmt.Fprintf(a.Out, "%s %s %s\n", RenderLabel("Chat history", w), RenderStatus(status), ValueStyle.Render(string(st.CosmosDB.Status)))
	if d := st.Dialog; d != nil {
		fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("", w), DimStyle.Render(d.Subtitle))
	}
	fmt.Fprintln(a.Out)

	fs := st.FrontendSettings
	fmt.Fprintln(a.Out, TitleStyle.Render("Frontend settings"))
	fmt.Fprintln(a.Out, RenderSeparator())
	if fs == nil {
		fmt.Fprintln(a.Out, DimStyle.Render("unavailable"))
		return nil
	}
	rows := []struct {
		label string
		value string
	}{
		{"Title", fs.Title(a.Config.UI.Title)},
		{"Chat title", fs.UI.ChatTitle},
		{"Chat description", fs.UI.ChatDescription},
		{"Feedback", strconv.FormatBool(fs.FeedbackEnabled)},
		{"Auth", strconv.FormatBool(fs.AuthEnabled)},
		{"Sanitize answers", strconv.FormatBool(fs.SanitizeAnswer)},
		{"Share button", strconv.FormatBool(fs.UI.ShowShareButton)},
	}
	for _, r := range rows {
		fmt.Fprintf(a.Out, "%s %s\n", RenderLabel(r.label, w), ValueStyle.Render(r.value))
	}
	return nil
}
