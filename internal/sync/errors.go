// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"errors"
	"fmt"
)

// Kind classifies a sync failure.
type Kind string

const (
	// KindNotConfigured means no remote endpoint is set.
	KindNotConfigured Kind = "not_configured"

	// KindTransport covers network failures, non-2xx responses and an open
	// circuit breaker.
	KindTransport Kind = "transport"

	// KindMalformed means the response was not a usable pull document.
	KindMalformed Kind = "malformed"

	// KindRemoteError means the remote answered with status "error".
	KindRemoteError Kind = "remote_error"

	// KindInProgress means another pull on the same engine is running.
	KindInProgress Kind = "in_progress"
)

var (
	// ErrNotConfigured is wrapped by every KindNotConfigured error.
	ErrNotConfigured = errors.New("sync endpoint not configured")

	// ErrPullInProgress is wrapped by every KindInProgress error.
	ErrPullInProgress = errors.New("pull already in progress")
)

// SyncError is returned by push and pull.
type SyncError struct {
	Kind Kind
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Kind, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a *SyncError in err's chain, or "" if there is
// none.
func KindOf(err error) Kind {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func malformed(format string, args ...any) error {
	return &SyncError{Kind: KindMalformed, Err: fmt.Errorf(format, args...)}
}
