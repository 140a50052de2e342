// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

// Broadcast scopes for Notification.To. Any other value names a class.
const (
	AudienceAll      = "ALL"
	AudienceStudents = "STUDENTS"
	AudienceTeachers = "TEACHERS"
)

// Notification is a notice board entry.
type Notification struct {
	ID      string `json:"id" validate:"notblank"`
	Title   string `json:"title" validate:"notblank"`
	Message string `json:"message"`
	To      string `json:"to" validate:"notblank"`
	Date    string `json:"date"`
	Sender  string `json:"sender"`
	Type    string `json:"type"`
}

// RecordID implements Record.
func (n Notification) RecordID() string { return n.ID }

// Validate implements Record.
func (n Notification) Validate() error { return check(n) }

// VisibleTo reports whether a reader with role and className should see n.
// Admins see everything. The store itself never filters on To.
func (n Notification) VisibleTo(role Role, className string) bool {
	switch n.To {
	case AudienceAll:
		return true
	case AudienceStudents:
		return role == RoleStudent || role == RoleParent || role == RoleAdmin
	case AudienceTeachers:
		return role == RoleTeacher || role == RoleAdmin
	}
	if role == RoleAdmin {
		return true
	}
	return className != "" && n.To == className
}
