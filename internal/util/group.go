// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"time"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// RecentLabel names the group of the current month.
const RecentLabel = "Recent"

// MonthGroup is a run of conversations from one calendar month.
type MonthGroup struct {
	// Label is RecentLabel, the month name for the current year, or
	// "January 2006" for earlier years.
	Label         string
	Conversations []model.Conversation
}

// GroupByMonth splits a newest-first history list into month groups,
// keeping the list order. Entries with unparseable dates join the group
// before them, or Recent when they come first.
func GroupByMonth(list []model.Conversation, now time.Time) []MonthGroup {
	var groups []MonthGroup
	lastKey := ""
	for _, c := range list {
		key := RecentLabel
		if t := c.Time(); !t.IsZero() {
			key = monthLabel(t.Local(), now)
		} else if lastKey != "" {
			key = lastKey
		}

		if len(groups) == 0 || key != lastKey {
			groups = append(groups, MonthGroup{Label: key})
			lastKey = key
		}
		g := &groups[len(groups)-1]
		g.Conversations = append(g.Conversations, c)
	}
	return groups
}

func monthLabel(t, now time.Time) string {
	switch {
	case t.Year() == now.Year() && t.Month() == now.Month():
		return RecentLabel
	case t.Year() == now.Year():
		return t.Month().String()
	default:
		return t.Format("January 2006")
	}
}
