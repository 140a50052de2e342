// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package sync mirrors the local dataset to a remote spreadsheet endpoint
(a Google Apps Script web app).

# Push

Every successful repository mutation schedules a push. A push POSTs the
full dataset as one PushPayload with Content-Type text/plain. Pushes are
fire-and-forget: their failures are logged (rate limited) and counted but
never reach the code that made the change.

While the Pusher service runs, push requests coalesce into a single
pending slot so a burst of edits produces one or two pushes, each carrying
the latest data. Without a running Pusher each request gets its own
goroutine; Flush waits for those.

# Pull

PullAll GETs a PullResponse, decodes every present collection into typed
records, and replaces the matching local slots in one store transaction.
Collections missing from the response are left untouched. Any failure
leaves the store exactly as it was:

	err := engine.PullAll(ctx)
	switch sync.KindOf(err) {
	case sync.KindNotConfigured: // offline, nothing contacted
	case sync.KindTransport:     // network, HTTP status, open breaker
	case sync.KindMalformed:     // not a pull document
	case sync.KindRemoteError:   // remote said status "error"
	case sync.KindInProgress:    // another pull is running
	}

# Keys

Push and pull documents use different collection keys. CollectionMappings
is the single table relating local slot, push key and pull key.

# Circuit Breaker

CircuitBreakerClient wraps the HTTP client with sony/gobreaker so an
unreachable endpoint fails fast instead of timing out on every mutation.
*/
package sync
