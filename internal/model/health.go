// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// HISTORY CAPABILITY
// =============================================================================

// CosmosDBStatus describes the state of the remote history store.
type CosmosDBStatus string

const (
	CosmosDBNotConfigured      CosmosDBStatus = "CosmosDB is not configured"
	CosmosDBNotWorking         CosmosDBStatus = "CosmosDB is not working"
	CosmosDBInvalidCredentials CosmosDBStatus = "CosmosDB has invalid credentials"
	CosmosDBInvalidDatabase    CosmosDBStatus = "Invalid CosmosDB database name"
	CosmosDBInvalidContainer   CosmosDBStatus = "Invalid CosmosDB container name"
	CosmosDBWorking            CosmosDBStatus = "CosmosDB is configured and working"
)

// CosmosDBHealth is the capability flag returned by the ensure endpoint.
// When CosmosDB is false every history feature is hidden.
type CosmosDBHealth struct {
	CosmosDB bool           `json:"cosmosDB"`
	Status   CosmosDBStatus `json:"status"`
}

// Enabled reports whether remote persistence may be used.
func (h CosmosDBHealth) Enabled() bool {
	return h.CosmosDB
}

// HistoryLoadingState tracks the initial history load.
type HistoryLoadingState string

const (
	HistoryLoading    HistoryLoadingState = "loading"
	HistorySuccess    HistoryLoadingState = "success"
	HistoryFail       HistoryLoadingState = "fail"
	HistoryNotStarted HistoryLoadingState = "notStarted"
)
