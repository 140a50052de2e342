// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"sort"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Schedule is the timetable, saved and loaded as one array. It is not part
// of the pushed dataset, so its changes publish but never schedule a push.
type Schedule struct {
	*Collection[models.TimeSlot]
}

// NewSchedule builds the timetable repository.
func NewSchedule(env *Env) *Schedule {
	return &Schedule{NewCollection[models.TimeSlot](env, store.SlotSchedule, ReplaceAll, LocalOnly[models.TimeSlot]())}
}

// ForClass returns the periods of className for day ordered by period.
// An empty day returns the whole week.
func (r *Schedule) ForClass(className, day string) []models.TimeSlot {
	slots := r.Filter(func(t models.TimeSlot) bool {
		return t.ClassName == className && (day == "" || t.Day == day)
	})
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Period < slots[j].Period })
	return slots
}

// ForTeacher returns every period taught by teacherID.
func (r *Schedule) ForTeacher(teacherID string) []models.TimeSlot {
	return r.Filter(func(t models.TimeSlot) bool { return t.TeacherID == teacherID })
}
