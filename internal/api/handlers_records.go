// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/schoolbook/internal/models"
)

// ListStudents returns the student master. Optional query parameters:
// class and section narrow by class, admissionNo looks up one student.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("admissionNo") != "":
		s, ok := h.repos.Students.ByAdmissionNo(q.Get("admissionNo"))
		if !ok {
			respondData(w, r, http.StatusOK, []models.Student{}, 0)
			return
		}
		respondData(w, r, http.StatusOK, []models.Student{s}, 1)
	case q.Get("class") != "":
		students := h.repos.Students.ByClass(q.Get("class"), q.Get("section"))
		respondData(w, r, http.StatusOK, students, len(students))
	default:
		students := h.repos.Students.GetAll()
		respondData(w, r, http.StatusOK, students, len(students))
	}
}

// GetStudent returns one student by id.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.repos.Students.Find(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Student not found", nil)
		return
	}
	respondData(w, r, http.StatusOK, s, -1)
}

// UpsertStudent inserts or replaces a student by id.
func (h *Handler) UpsertStudent(w http.ResponseWriter, r *http.Request) {
	var s models.Student
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := h.repos.Students.UpsertByID(s); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, s, -1)
}

// DeleteStudent removes a student. Fees, attendance and marks referencing
// the student are kept.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Students.DeleteByID(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStaff returns the staff directory, optionally filtered by role.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	var staff []models.Staff
	if role := r.URL.Query().Get("role"); role != "" {
		staff = h.repos.Staff.ByRole(models.Role(role))
	} else {
		staff = h.repos.Staff.GetAll()
	}
	respondData(w, r, http.StatusOK, staff, len(staff))
}

// UpsertStaff inserts or replaces a staff member by id.
func (h *Handler) UpsertStaff(w http.ResponseWriter, r *http.Request) {
	var s models.Staff
	if !decodeJSON(w, r, &s) {
		return
	}
	if err := h.repos.Staff.UpsertByID(s); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, s, -1)
}

// DeleteStaff removes a staff member.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Staff.DeleteByID(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFees returns the fee ledger, newest first. studentId narrows to one
// student; status=Pending lists transactions awaiting verification.
func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var fees []models.FeeTransaction
	switch {
	case q.Get("studentId") != "":
		fees = h.repos.Fees.ForStudent(q.Get("studentId"))
	case q.Get("status") == string(models.FeePending):
		fees = h.repos.Fees.Pending()
	default:
		fees = h.repos.Fees.GetAll()
	}
	respondData(w, r, http.StatusOK, fees, len(fees))
}

// FeeSummary returns verified payment totals keyed by student id.
func (h *Handler) FeeSummary(w http.ResponseWriter, r *http.Request) {
	collected := h.repos.Fees.Collected()
	respondData(w, r, http.StatusOK, collected, len(collected))
}

// RecordFee appends a fee transaction. Missing id, date and status are
// filled in and the total is computed from base and fine.
func (h *Handler) RecordFee(w http.ResponseWriter, r *http.Request) {
	var tx models.FeeTransaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	saved, err := h.repos.Fees.Record(tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, saved, -1)
}

// feeStatusRequest is the body of PATCH /fees/{id}/status.
type feeStatusRequest struct {
	Status models.FeeStatus `json:"status"`
}

// SetFeeStatus verifies or rejects a pending transaction.
func (h *Handler) SetFeeStatus(w http.ResponseWriter, r *http.Request) {
	var req feeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.repos.Fees.SetStatus(id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	tx, _ := h.repos.Fees.Find(id)
	respondData(w, r, http.StatusOK, tx, -1)
}

// ListAttendance returns attendance rows. date with optional class narrows
// to one register; studentId narrows to one student.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var rows []models.AttendanceRecord
	switch {
	case q.Get("studentId") != "":
		rows = h.repos.Attendance.ForStudent(q.Get("studentId"))
	case q.Get("date") != "":
		rows = h.repos.Attendance.ForDate(q.Get("date"), q.Get("class"))
	default:
		rows = h.repos.Attendance.GetAll()
	}
	respondData(w, r, http.StatusOK, rows, len(rows))
}

// AttendanceSubmitted reports whether a register exists for date and class.
func (h *Handler) AttendanceSubmitted(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("date") == "" {
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "date is required", nil)
		return
	}
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"date":      q.Get("date"),
		"class":     q.Get("class"),
		"submitted": h.repos.Attendance.Submitted(q.Get("date"), q.Get("class")),
	}, -1)
}

// SubmitAttendance appends a register. Submitting the same register twice
// stores it twice.
func (h *Handler) SubmitAttendance(w http.ResponseWriter, r *http.Request) {
	var batch []models.AttendanceRecord
	if !decodeJSON(w, r, &batch) {
		return
	}
	if err := h.repos.Attendance.SubmitRegister(batch); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, batch, len(batch))
}

// ListMarks returns exam marks. studentId narrows to one student; exam with
// optional class narrows to one exam.
func (h *Handler) ListMarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var marks []models.ExamMark
	switch {
	case q.Get("studentId") != "":
		marks = h.repos.Marks.ForStudent(q.Get("studentId"))
	case q.Get("exam") != "":
		marks = h.repos.Marks.ForExam(q.Get("exam"), q.Get("class"))
	default:
		marks = h.repos.Marks.GetAll()
	}
	respondData(w, r, http.StatusOK, marks, len(marks))
}

// EnterMarks upserts a batch of marks.
func (h *Handler) EnterMarks(w http.ResponseWriter, r *http.Request) {
	var marks []models.ExamMark
	if !decodeJSON(w, r, &marks) {
		return
	}
	if err := h.repos.Marks.Enter(marks...); err != nil {
		writeError(w, r, err)
		return
	}
	for i := range marks {
		marks[i] = marks[i].WithDerivedID()
	}
	respondData(w, r, http.StatusOK, marks, len(marks))
}

// DeleteMark removes one mark row.
func (h *Handler) DeleteMark(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Marks.DeleteByID(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotifications returns notices, newest first. role with optional
// class returns the notices that reader should see.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var notices []models.Notification
	if role := q.Get("role"); role != "" {
		notices = h.repos.Notifications.For(models.Role(role), q.Get("class"))
	} else {
		notices = h.repos.Notifications.GetAll()
	}
	respondData(w, r, http.StatusOK, notices, len(notices))
}

// PostNotification publishes a notice.
func (h *Handler) PostNotification(w http.ResponseWriter, r *http.Request) {
	var n models.Notification
	if !decodeJSON(w, r, &n) {
		return
	}
	saved, err := h.repos.Notifications.Post(n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, saved, -1)
}

// ListSchedule returns timetable slots. class with optional day, or
// teacherId, narrows the result.
func (h *Handler) ListSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var slots []models.TimeSlot
	switch {
	case q.Get("teacherId") != "":
		slots = h.repos.Schedule.ForTeacher(q.Get("teacherId"))
	case q.Get("class") != "":
		slots = h.repos.Schedule.ForClass(q.Get("class"), q.Get("day"))
	default:
		slots = h.repos.Schedule.GetAll()
	}
	respondData(w, r, http.StatusOK, slots, len(slots))
}

// ReplaceSchedule replaces the whole timetable. The schedule is local only
// and is never pushed.
func (h *Handler) ReplaceSchedule(w http.ResponseWriter, r *http.Request) {
	var slots []models.TimeSlot
	if !decodeJSON(w, r, &slots) {
		return
	}
	if err := h.repos.Schedule.ReplaceAll(slots); err != nil {
		writeError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, slots, len(slots))
}
