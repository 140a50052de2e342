// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package api exposes the school records store over a local HTTP API.

The API is the surface the UI screens use in place of touching the store
directly. Every mutation goes through the collection repositories, so it is
validated, persisted, announced on the change bus and (for replicated
collections) scheduled for a background push exactly as an in-process call
would be.

# Routes

All routes live under /api/v1 and answer with models.APIResponse:

	GET    /students            ?class=&section= | ?admissionNo=
	POST   /students            upsert by id
	GET    /students/{id}
	DELETE /students/{id}
	GET    /staff               ?role=
	POST   /staff               upsert by id
	DELETE /staff/{id}
	GET    /fees                ?studentId= | ?status=Pending
	POST   /fees                record a transaction (prepended)
	GET    /fees/collected      verified totals per student
	PATCH  /fees/{id}/status    Pending -> Verified | Rejected
	GET    /attendance          ?date=&class= | ?studentId=
	POST   /attendance          submit a register (appended, duplicates kept)
	GET    /attendance/submitted?date=&class=
	GET    /marks               ?studentId= | ?exam=&class=
	POST   /marks               upsert a batch
	DELETE /marks/{id}
	GET    /notifications       ?role=&class=
	POST   /notifications
	GET    /schedule            ?class=&day= | ?teacherId=
	PUT    /schedule            replace the timetable (local only)
	GET    /config              credentials masked
	PUT    /config
	GET    /session
	PUT    /session
	DELETE /session
	POST   /sync/pull
	POST   /sync/push
	POST   /roster/import       xlsx upload
	GET    /export.xlsx
	GET    /ws                  change notifications
	GET    /health, /health/live, /health/ready, /health/latency

/metrics serves Prometheus metrics.

# Errors

Error codes follow the store's taxonomy: VALIDATION_FAILED (400) with a
per-field details map, NOT_FOUND (404), CONFLICT (409) for duplicate
admission numbers, illegal fee transitions and concurrent pulls,
DATABASE_ERROR (500, or 507 when the storage quota is exceeded),
SERVICE_UNAVAILABLE (503) for a pull without a configured endpoint and
EXTERNAL_SERVICE_FAILED (502) for transport, malformed or remote errors.
*/
package api
