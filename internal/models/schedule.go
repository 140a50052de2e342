// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

// TimeSlot is one period in the weekly timetable.
type TimeSlot struct {
	ID        string `json:"id" validate:"notblank"`
	Day       string `json:"day" validate:"notblank"`
	Period    int    `json:"period" validate:"gte=0"`
	StartTime string `json:"startTime" validate:"clock"`
	EndTime   string `json:"endTime" validate:"clock"`
	ClassName string `json:"className"`
	Subject   string `json:"subject"`
	TeacherID string `json:"teacherId"`
}

// RecordID implements Record.
func (t TimeSlot) RecordID() string { return t.ID }

// Validate implements Record.
func (t TimeSlot) Validate() error { return check(t) }
