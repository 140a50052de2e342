// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

// StudentStatus is the enrolment state of a student.
type StudentStatus string

const (
	StudentActive    StudentStatus = "Active"
	StudentAlumni    StudentStatus = "Alumni"
	StudentSuspended StudentStatus = "Suspended"
)

// Document is an uploaded file kept as an opaque base64 payload.
type Document struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Student is one admitted pupil.
type Student struct {
	ID             string        `json:"id" validate:"notblank"`
	AdmissionNo    string        `json:"admissionNo" validate:"notblank"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	DOB            string        `json:"dob" validate:"isodate"`
	Gender         string        `json:"gender"`
	ClassName      string        `json:"className"`
	Section        string        `json:"section"`
	RollNo         string        `json:"rollNo"`
	GuardianName   string        `json:"guardianName"`
	GuardianPhone  string        `json:"guardianPhone"`
	GuardianEmail  string        `json:"guardianEmail" validate:"omitempty,email"`
	Address        string        `json:"address"`
	Status         StudentStatus `json:"status" validate:"omitempty,oneof=Active Alumni Suspended"`
	AdmissionDate  string        `json:"admissionDate" validate:"isodate"`
	Photo          string        `json:"photo,omitempty"`
	Documents      []Document    `json:"documents,omitempty"`
	Subjects       []string      `json:"subjects,omitempty" validate:"omitempty,unique"`
	BloodGroup     string        `json:"bloodGroup"`
	PreviousSchool string        `json:"previousSchool"`
}

// RecordID implements Record.
func (s Student) RecordID() string { return s.ID }

// Validate implements Record.
func (s Student) Validate() error { return check(s) }

// FullName joins first and last name.
func (s Student) FullName() string {
	switch {
	case s.LastName == "":
		return s.FirstName
	case s.FirstName == "":
		return s.LastName
	default:
		return s.FirstName + " " + s.LastName
	}
}
