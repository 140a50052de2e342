// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

import (
	"github.com/tomtom215/schoolbook/internal/validation"
)

// Record is implemented by every entity stored in a collection.
type Record interface {
	// RecordID is the identity used by upsert and delete.
	RecordID() string

	// Validate reports structural problems. A nil return means the record
	// can be persisted.
	Validate() error
}

// Role is the enumerated user role.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleTeacher    Role = "Teacher"
	RoleAccountant Role = "Accountant"
	RoleStudent    Role = "Student"
	RoleParent     Role = "Parent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleAccountant, RoleStudent, RoleParent:
		return true
	}
	return false
}

// check wraps validation.ValidateStruct so that a nil result stays a nil error.
func check(v interface{}) error {
	if err := validation.ValidateStruct(v); err != nil {
		return err
	}
	return nil
}
