// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

/*
Package models defines the school record types and their identity rules.

Every collection record implements Record: it reports the identity used for
upserts and deletes, and validates its own shape before it is persisted.
JSON field names are camelCase and form the interop contract with the remote
spreadsheet service, so they must not be renamed.

Collections:

  - Student          identity id, secondary key admissionNo
  - Staff            identity id
  - FeeTransaction   identity id, append-only apart from one status transition
  - AttendanceRecord compound identity (date, studentId), duplicates allowed
  - ExamMark         identity derived from (studentId, examName, subject)
  - Notification     identity id, append-only
  - TimeSlot         identity id, replaced as a whole

Singletons:

  - SystemConfig holds the remote endpoint and display metadata
  - Session identifies the signed-in user and is never synchronized

Validation uses internal/validation tags for per-field rules; cross-field
invariants (fee totals, marks against maximum) are checked in Validate.
*/
package models
