// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"fmt"
	"strings"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Students is the student master, upserted by id with admissionNo kept
// unique across different ids.
type Students struct {
	*Collection[models.Student]
}

// NewStudents builds the student repository.
func NewStudents(env *Env) *Students {
	return &Students{NewCollection[models.Student](env, store.SlotStudents, UpsertByKey,
		WithGuard[models.Student](uniqueAdmissionNo))}
}

func uniqueAdmissionNo(current, incoming []models.Student) error {
	owner := make(map[string]string, len(current)+len(incoming))
	replacing := make(map[string]bool, len(incoming))
	for _, s := range incoming {
		replacing[s.ID] = true
	}
	for _, s := range current {
		if replacing[s.ID] {
			continue
		}
		if _, seen := owner[s.AdmissionNo]; !seen {
			owner[s.AdmissionNo] = s.ID
		}
	}
	for _, s := range incoming {
		if id, taken := owner[s.AdmissionNo]; taken && id != s.ID {
			return fmt.Errorf("%w: %s belongs to student %s", ErrDuplicateAdmissionNo, s.AdmissionNo, id)
		}
		owner[s.AdmissionNo] = s.ID
	}
	return nil
}

// ByAdmissionNo returns the student holding admissionNo.
func (r *Students) ByAdmissionNo(admissionNo string) (models.Student, bool) {
	for _, s := range r.GetAll() {
		if s.AdmissionNo == admissionNo {
			return s, true
		}
	}
	return models.Student{}, false
}

// ByClass returns students in className. An empty section matches every
// section. Comparison ignores case.
func (r *Students) ByClass(className, section string) []models.Student {
	return r.Filter(func(s models.Student) bool {
		if !strings.EqualFold(s.ClassName, className) {
			return false
		}
		return section == "" || strings.EqualFold(s.Section, section)
	})
}
