// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Attendance is the attendance log. Registers are appended as submitted;
// submitting the same day twice keeps both copies.
type Attendance struct {
	*Collection[models.AttendanceRecord]
}

// NewAttendance builds the attendance repository.
func NewAttendance(env *Env) *Attendance {
	return &Attendance{NewCollection[models.AttendanceRecord](env, store.SlotAttendance, AppendBatch)}
}

// SubmitRegister appends one class register.
func (r *Attendance) SubmitRegister(batch []models.AttendanceRecord) error {
	return r.AppendBatch(batch)
}

// ForDate returns the rows for date. An empty className matches every class.
func (r *Attendance) ForDate(date, className string) []models.AttendanceRecord {
	return r.Filter(func(a models.AttendanceRecord) bool {
		return a.Date == date && (className == "" || a.ClassName == className)
	})
}

// ForStudent returns every row for one student in stored order.
func (r *Attendance) ForStudent(studentID string) []models.AttendanceRecord {
	return r.Filter(func(a models.AttendanceRecord) bool { return a.StudentID == studentID })
}

// Submitted reports whether any register row exists for className on date.
func (r *Attendance) Submitted(date, className string) bool {
	return len(r.ForDate(date, className)) > 0
}
