// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import "errors"

var (
	// ErrNotFound is returned when an update targets an absent identity.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateAdmissionNo is returned when a student's admission number
	// is already used by a different student.
	ErrDuplicateAdmissionNo = errors.New("admission number already in use")

	// ErrInvalidStatusTransition is returned for fee status changes other
	// than Pending to Verified or Rejected.
	ErrInvalidStatusTransition = errors.New("invalid fee status transition")

	// ErrIdentityChanged is returned when an update function rewrites the
	// identity of the record it was given.
	ErrIdentityChanged = errors.New("update changed record identity")

	// ErrFeeImmutable is returned when an upsert would change a recorded fee
	// transaction beyond its status.
	ErrFeeImmutable = errors.New("fee transactions can only change status")
)
