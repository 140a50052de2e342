// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Marks holds exam marks keyed by (studentId, examName, subject). Entering
// the same mark twice updates it in place.
type Marks struct {
	*Collection[models.ExamMark]
}

// NewMarks builds the marks repository. Incoming marks always carry the
// derived identity.
func NewMarks(env *Env) *Marks {
	return &Marks{NewCollection[models.ExamMark](env, store.SlotMarks, UpsertByKey,
		WithPrepare[models.ExamMark](models.ExamMark.WithDerivedID))}
}

// Enter records or corrects marks.
func (r *Marks) Enter(marks ...models.ExamMark) error {
	return r.Save(marks...)
}

// ForStudent returns every mark of one student.
func (r *Marks) ForStudent(studentID string) []models.ExamMark {
	return r.Filter(func(m models.ExamMark) bool { return m.StudentID == studentID })
}

// ForExam returns the marks of one exam in className.
func (r *Marks) ForExam(examName, className string) []models.ExamMark {
	return r.Filter(func(m models.ExamMark) bool {
		return m.ExamName == examName && (className == "" || m.ClassName == className)
	})
}
