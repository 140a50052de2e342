// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package services adapts components without a context-aware Serve method
// to suture.Service. Today that is only the HTTP server.
package services
