// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

// AttendanceStatus is a register mark.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceLeave   AttendanceStatus = "Leave"
)

// AttendanceRecord is one student's mark for one day. Identity is the pair
// (date, studentId) but the collection does not deduplicate on it.
type AttendanceRecord struct {
	Date        string           `json:"date" validate:"notblank,isodate"`
	StudentID   string           `json:"studentId" validate:"notblank"`
	StudentName string           `json:"studentName"`
	ClassName   string           `json:"className"`
	Status      AttendanceStatus `json:"status" validate:"oneof=Present Absent Late Leave"`
	MarkedBy    string           `json:"markedBy"`
}

// AttendanceKey builds the compound identity of an attendance row.
func AttendanceKey(date, studentID string) string {
	return date + "/" + studentID
}

// RecordID implements Record.
func (a AttendanceRecord) RecordID() string { return AttendanceKey(a.Date, a.StudentID) }

// Validate implements Record.
func (a AttendanceRecord) Validate() error { return check(a) }
