// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

// Staff is a member of the school's staff directory.
// Student and Parent are valid roles but never appear in this collection.
type Staff struct {
	ID            string  `json:"id" validate:"notblank"`
	Name          string  `json:"name"`
	Role          Role    `json:"role" validate:"oneof=Admin Teacher Accountant Student Parent"`
	Email         string  `json:"email" validate:"omitempty,email"`
	Phone         string  `json:"phone"`
	Subject       string  `json:"subject"`
	Salary        float64 `json:"salary" validate:"gte=0"`
	AssignedClass string  `json:"assignedClass"`
	JoiningDate   string  `json:"joiningDate" validate:"isodate"`
	Status        string  `json:"status"`
}

// RecordID implements Record.
func (s Staff) RecordID() string { return s.ID }

// Validate implements Record.
func (s Staff) Validate() error { return check(s) }
