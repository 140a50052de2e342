// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/schoolbook/internal/validation"
)

// ExamMark is a student's score in one subject of one exam.
type ExamMark struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"studentId" validate:"notblank"`
	ExamName      string  `json:"examName" validate:"notblank"`
	Subject       string  `json:"subject" validate:"notblank"`
	MarksObtained float64 `json:"marksObtained" validate:"gte=0"`
	MaxMarks      float64 `json:"maxMarks" validate:"gte=0"`
	ClassName     string  `json:"className"`
	Remarks       string  `json:"remarks"`
}

// markNamespace scopes the name-based UUIDs of exam marks.
var markNamespace = uuid.MustParse("6f1c2a7e-3b9d-4f5a-8c21-9e4d7b0a5c13")

// ExamMarkID derives the deterministic mark identity, a name-based UUID over
// the length-prefixed natural key. Parts are trimmed and runs of inner
// whitespace collapse to one space; every other character is significant.
func ExamMarkID(studentID, examName, subject string) string {
	var b strings.Builder
	for _, part := range []string{studentID, examName, subject} {
		part = strings.Join(strings.Fields(part), " ")
		b.WriteString(strconv.Itoa(len(part)))
		b.WriteByte(':')
		b.WriteString(part)
	}
	return uuid.NewSHA1(markNamespace, []byte(b.String())).String()
}

// WithDerivedID returns m with ID set from its natural key.
func (m ExamMark) WithDerivedID() ExamMark {
	m.ID = ExamMarkID(m.StudentID, m.ExamName, m.Subject)
	return m
}

// RecordID implements Record.
func (m ExamMark) RecordID() string {
	if m.ID != "" {
		return m.ID
	}
	return ExamMarkID(m.StudentID, m.ExamName, m.Subject)
}

// Validate implements Record.
func (m ExamMark) Validate() error {
	if err := check(m); err != nil {
		return err
	}
	if m.MaxMarks > 0 && m.MarksObtained > m.MaxMarks {
		return validation.NewFieldError("marksObtained", "ltefield", "marksObtained must not exceed maxMarks")
	}
	return nil
}

// Percentage returns the score as a percentage of MaxMarks, or 0 when no
// maximum is recorded.
func (m ExamMark) Percentage() float64 {
	if m.MaxMarks <= 0 {
		return 0
	}
	return m.MarksObtained / m.MaxMarks * 100
}
