// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Staff is the staff directory, upserted by id.
type Staff struct {
	*Collection[models.Staff]
}

// NewStaff builds the staff repository.
func NewStaff(env *Env) *Staff {
	return &Staff{NewCollection[models.Staff](env, store.SlotStaff, UpsertByKey)}
}

// ByRole returns staff members with role.
func (r *Staff) ByRole(role models.Role) []models.Staff {
	return r.Filter(func(s models.Staff) bool { return s.Role == role })
}

// ClassTeacher returns the teacher assigned to className.
func (r *Staff) ClassTeacher(className string) (models.Staff, bool) {
	for _, s := range r.GetAll() {
		if s.Role == models.RoleTeacher && s.AssignedClass == className {
			return s, true
		}
	}
	return models.Staff{}, false
}
