// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Repositories bundles every repository over one store.
type Repositories struct {
	env *Env

	Students      *Students
	Staff         *Staff
	Fees          *Fees
	Attendance    *Attendance
	Marks         *Marks
	Notifications *Notifications
	Schedule      *Schedule
	Config        *ConfigRepo
	Session       *SessionRepo
}

// New wires all repositories to s and bus. Install the push scheduler with
// SetScheduler once the sync engine exists.
func New(s store.Store, bus *events.Bus, cipher CredentialCipher) *Repositories {
	env := NewEnv(s, bus, nil)
	return &Repositories{
		env:           env,
		Students:      NewStudents(env),
		Staff:         NewStaff(env),
		Fees:          NewFees(env),
		Attendance:    NewAttendance(env),
		Marks:         NewMarks(env),
		Notifications: NewNotifications(env),
		Schedule:      NewSchedule(env),
		Config:        NewConfigRepo(env, cipher),
		Session:       NewSessionRepo(env),
	}
}

// Env returns the shared environment.
func (r *Repositories) Env() *Env { return r.env }

// Bus returns the change bus.
func (r *Repositories) Bus() *events.Bus { return r.env.bus }

// SetScheduler installs the push scheduler used after every mutation.
func (r *Repositories) SetScheduler(s Scheduler) { r.env.SetScheduler(s) }

// Dataset is a point-in-time copy of every replicated collection.
type Dataset struct {
	Students      []models.Student
	Fees          []models.FeeTransaction
	Staff         []models.Staff
	Attendance    []models.AttendanceRecord
	Marks         []models.ExamMark
	Notifications []models.Notification
}

// Dataset reads every replicated collection under the mutation lock, so the
// copy never mixes the halves of a concurrent mutation.
func (r *Repositories) Dataset() Dataset {
	r.env.mu.Lock()
	defer r.env.mu.Unlock()

	return Dataset{
		Students:      r.Students.GetAll(),
		Fees:          r.Fees.GetAll(),
		Staff:         r.Staff.GetAll(),
		Attendance:    r.Attendance.GetAll(),
		Marks:         r.Marks.GetAll(),
		Notifications: r.Notifications.GetAll(),
	}
}
