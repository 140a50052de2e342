// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Command server runs the Schoolbook records store: a BadgerDB-backed local
store of students, staff, fees, attendance, marks, notifications and the
timetable, served over a local HTTP API and replicated to a Google Apps
Script endpoint when one is configured.

# Startup

 1. Configuration: Koanf v2 (defaults, optional config.yaml, .env, environment)
 2. Logging: zerolog, level and format from LOG_LEVEL and LOG_FORMAT
 3. Store: BadgerDB at STORE_PATH
 4. Repositories over the store, with credential encryption when
    CREDENTIAL_SECRET is set
 5. System config seeded from SCHOOL_* and SYNC_ENDPOINT_URL on first start
 6. Sync engine behind a circuit breaker
 7. Change feed and websocket hub
 8. Supervisor tree running the services until SIGINT or SIGTERM

Without an endpoint the store runs offline: every mutation is kept locally
and background pushes are skipped.

# Example

	STORE_PATH=/var/lib/schoolbook \
	SCHOOL_NAME="Green Valley School" \
	SYNC_ENDPOINT_URL=https://script.google.com/macros/s/XXXX/exec \
	CORS_ORIGINS=http://localhost:5173 \
	./schoolbook

The version reported by /api/v1/health is set at link time:

	go build -ldflags "-X github.com/tomtom215/schoolbook/internal/api.Version=1.0.0" ./cmd/server
*/
package main
