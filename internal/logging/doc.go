// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package logging provides the zerolog-based structured logger shared by every
// Schoolbook component.
//
// A single global logger is configured once from main via Init and then used
// through level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("slot", "students").Int("records", n).Msg("collection written")
//	logging.Ctx(ctx).Warn().Err(err).Msg("pull failed")
//
// Components that want a fixed field set use WithComponent:
//
//	log := logging.WithComponent("sync")
//	log.Debug().Msg("push scheduled")
//
// Libraries that only speak log/slog (the suture event hook) are bridged with
// NewSlogLogger, which routes slog records into the same zerolog output.
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// Always terminate an event chain with Msg or Send, otherwise nothing is written.
package logging
