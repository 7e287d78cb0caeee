// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
)

// Texts of the dialog shown when history is configured but unusable.
const (
	DisabledTitle  = "Chat history is not enabled"
	DisabledSuffix = ". Please contact the site administrator."
)

// Backend is what Bootstrap needs from the API client.
type Backend interface {
	Lister
	HistoryEnsure(ctx context.Context) (model.CosmosDBHealth, error)
	FrontendSettings(ctx context.Context) (*model.FrontendSettings, error)
}

// Bootstrap seeds a fresh store: frontend settings, the history
// capability and the first history page.
//
// Failures never return an error. They are recorded as a Fail loading
// state and, when history is configured but not working, a blocking
// dialog.
func Bootstrap(ctx context.Context, st *store.Store, backend Backend, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("bootstrap")

	if settings, err := backend.FrontendSettings(ctx); err != nil {
		log.Warn("frontend settings unavailable", zap.Error(err))
	} else {
		st.Dispatch(store.SetFrontendSettings{Settings: settings})
	}

	health := ensure(ctx, st, backend, log)
	if d, ok := disabledDialog(health, st.State().HistoryLoadingState); ok {
		st.Dispatch(store.ShowDialog{Dialog: d})
	}
}

func ensure(ctx context.Context, st *store.Store, backend Backend, log *zap.Logger) model.CosmosDBHealth {
	st.Dispatch(store.SetHistoryLoadingState{State: model.HistoryLoading})

	health, err := backend.HistoryEnsure(ctx)
	if err != nil {
		log.Warn("history ensure failed", zap.Error(err))
		return fail(st, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotConfigured})
	}
	if !health.CosmosDB {
		return fail(st, health)
	}

	list, err := backend.HistoryList(ctx, 0)
	if err != nil || list == nil {
		if err != nil {
			log.Warn("history list failed", zap.Error(err))
		}
		st.Dispatch(store.FetchChatHistory{Conversations: nil})
		return fail(st, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotWorking})
	}

	st.Dispatch(store.FetchChatHistory{Conversations: list})
	st.Dispatch(store.SetHistoryLoadingState{State: model.HistorySuccess})
	st.Dispatch(store.SetCosmosDBStatus{Health: health})
	log.Info("history loaded", zap.Int("conversations", len(list)))
	return health
}

func fail(st *store.Store, health model.CosmosDBHealth) model.CosmosDBHealth {
	st.Dispatch(store.SetHistoryLoadingState{State: model.HistoryFail})
	st.Dispatch(store.SetCosmosDBStatus{Health: health})
	return health
}

// disabledDialog returns the blocking dialog for history that is
// configured but failed to load.
func disabledDialog(health model.CosmosDBHealth, loading model.HistoryLoadingState) (store.Dialog, bool) {
	if health.Status == model.CosmosDBWorking || health.Status == model.CosmosDBNotConfigured || loading != model.HistoryFail {
		return store.Dialog{}, false
	}
	return store.Dialog{
		Title:    DisabledTitle,
		Subtitle: string(health.Status) + DisabledSuffix,
		Blocking: true,
	}, true
}
