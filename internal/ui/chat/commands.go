// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/history"
	"github.com/danniesim/mecoai-chat/internal/store"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// waitForChange blocks until the store signals a change. The update loop
// re-issues it after every storeChangedMsg.
func waitForChange(ctx context.Context, st *store.Store) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-st.Changes():
			return storeChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// bootstrapCmd loads frontend settings and the first history page.
func bootstrapCmd(ctx context.Context, st *store.Store, backend history.Backend, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		history.Bootstrap(ctx, st, backend, log)
		return bootstrapDoneMsg{}
	}
}

// runTurnCmd asks one question. The store reports progress on its own;
// the message only carries the outcome.
func runTurnCmd(ctx context.Context, r TurnRunner, question, conversationID string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{Result: r.Run(ctx, question, conversationID)}
	}
}

// opCmd runs a blocking store operation off the event loop.
func opCmd(op Op, id string, run func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{Op: op, ID: id, Err: run()}
	}
}

// fetchPageCmd loads the next history page.
func fetchPageCmd(ctx context.Context, p HistoryPager) tea.Cmd {
	return func() tea.Msg {
		return pageDoneMsg{Err: p.FetchNext(ctx)}
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// watchConfig starts the file watcher and waits for the first reload.
func (m Model) watchConfig() tea.Cmd {
	ctx, path, reloads, log := m.ctx, m.deps.ConfigPath, m.reloads, m.log
	return func() tea.Msg {
		err := config.Watch(ctx, path, func(cfg *config.Config) {
			// Latest wins; the watcher goroutine is the only sender.
			select {
			case <-reloads:
			default:
			}
			reloads <- cfg
		}, func(err error) {
			log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
		})
		if err != nil {
			log.Warn("config watch unavailable", zap.String("path", path), zap.Error(err))
			return nil
		}
		return waitForReload(ctx, reloads)()
	}
}

// waitForReload blocks until a reloaded configuration arrives.
func waitForReload(ctx context.Context, reloads <-chan *config.Config) tea.Cmd {
	return func() tea.Msg {
		select {
		case cfg := <-reloads:
			return configReloadedMsg{Config: cfg}
		case <-ctx.Done():
			return nil
		}
	}
}
