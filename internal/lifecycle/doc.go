// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lifecycle issues generation requests and owns their cancellation.
//
// Every request gets a Handle from the Controller. StopAll aborts all of
// them at once; stopping is idempotent and a no-op with nothing running.
// Runner maps the way a request ends onto the store: success commits the
// answer, a stop commits the partial answer, anything else commits an
// error message.
package lifecycle
