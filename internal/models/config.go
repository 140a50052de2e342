// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

import "strings"

// SystemConfig is the singleton school configuration record.
// An empty AppsScriptURL puts the store in offline mode.
// The DB* fields are reserved remote credentials and are stored encrypted
// when a credential secret is configured.
type SystemConfig struct {
	SchoolName     string `json:"schoolName"`
	AppsScriptURL  string `json:"appsScriptUrl" validate:"omitempty,url"`
	CurrentSession string `json:"currentSession"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Logo           string `json:"logo,omitempty"`
	DBHost         string `json:"dbHost,omitempty"`
	DBUser         string `json:"dbUser,omitempty"`
	DBPassword     string `json:"dbPassword,omitempty"`
}

// Validate checks the configuration shape.
func (c SystemConfig) Validate() error { return check(c) }

// Endpoint returns the trimmed remote endpoint URL, or "" when offline.
func (c SystemConfig) Endpoint() string {
	return strings.TrimSpace(c.AppsScriptURL)
}

// Offline reports whether no remote endpoint is configured.
func (c SystemConfig) Offline() bool {
	return c.Endpoint() == ""
}

// Session identifies the signed-in user. It is persisted locally only.
type Session struct {
	ID       string `json:"id" validate:"notblank"`
	Name     string `json:"name"`
	Role     Role   `json:"role" validate:"oneof=Admin Teacher Accountant Student Parent"`
	LinkedID string `json:"linkedId,omitempty"`
	LoginAt  string `json:"loginAt,omitempty"`
}

// Validate checks the session shape.
func (s Session) Validate() error { return check(s) }
