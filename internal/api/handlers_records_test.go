// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/schoolbook/internal/models"
)

func TestStudents_Lifecycle(t *testing.T) {
	ts := newTestServer(t, false)

	asha := models.Student{ID: "S1", AdmissionNo: "A100", FirstName: "Asha", ClassName: "5", Section: "A"}
	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/students", asha), http.StatusOK)

	// same identity replaces in place
	asha.FirstName = "Aashi"
	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/students", asha), http.StatusOK)

	var list []models.Student
	env := decode(t, ts.do(t, http.MethodGet, "/api/v1/students", nil), &list)
	if len(list) != 1 || list[0].FirstName != "Aashi" || env.Metadata.Count != 1 {
		t.Fatalf("students = %+v (count %d)", list, env.Metadata.Count)
	}

	var got models.Student
	decode(t, ts.do(t, http.MethodGet, "/api/v1/students/S1", nil), &got)
	if got.AdmissionNo != "A100" {
		t.Errorf("GET /students/S1 = %+v", got)
	}

	var byClass []models.Student
	decode(t, ts.do(t, http.MethodGet, "/api/v1/students?class=5&section=a", nil), &byClass)
	if len(byClass) != 1 {
		t.Errorf("class filter = %+v", byClass)
	}

	dup := models.Student{ID: "S2", AdmissionNo: "A100", FirstName: "Other"}
	expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/students", dup), http.StatusConflict, "CONFLICT")

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/v1/students/S1", nil), http.StatusNoContent)
	expectErrorCode(t, ts.do(t, http.MethodGet, "/api/v1/students/S1", nil), http.StatusNotFound, "NOT_FOUND")
	// deleting an absent id is a no-op
	expectStatus(t, ts.do(t, http.MethodDelete, "/api/v1/students/S1", nil), http.StatusNoContent)
}

func TestStudents_ValidationFailure(t *testing.T) {
	ts := newTestServer(t, false)

	bad := models.Student{ID: "S1", AdmissionNo: "A1", DOB: "03/06/2015", GuardianEmail: "not-an-email"}
	env := expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/students", bad), http.StatusBadRequest, "VALIDATION_FAILED")
	if env.Error.Details == nil {
		t.Error("validation error should carry field details")
	}
	if len(ts.repos.Students.GetAll()) != 0 {
		t.Error("invalid student must not be stored")
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	ts := newTestServer(t, false)
	expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/staff", "{not json"), http.StatusBadRequest, "BAD_REQUEST")
	expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/staff", nil), http.StatusBadRequest, "BAD_REQUEST")
}

func TestStaff_FilterByRole(t *testing.T) {
	ts := newTestServer(t, false)
	for _, s := range []models.Staff{
		{ID: "T1", Name: "Iyer", Role: models.RoleTeacher},
		{ID: "A1", Name: "Khan", Role: models.RoleAccountant},
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/staff", s), http.StatusOK)
	}

	var teachers []models.Staff
	decode(t, ts.do(t, http.MethodGet, "/api/v1/staff?role=Teacher", nil), &teachers)
	if len(teachers) != 1 || teachers[0].ID != "T1" {
		t.Errorf("teachers = %+v", teachers)
	}

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/v1/staff/T1", nil), http.StatusNoContent)
	if len(ts.repos.Staff.GetAll()) != 1 {
		t.Error("staff T1 should be gone")
	}
}

func TestFees_RecordAndVerify(t *testing.T) {
	ts := newTestServer(t, false)

	rec := ts.do(t, http.MethodPost, "/api/v1/fees", models.FeeTransaction{
		StudentID: "S1", FeeType: "Tuition", BaseAmount: 1000, FineAmount: 50,
	})
	expectStatus(t, rec, http.StatusCreated)
	var tx models.FeeTransaction
	decode(t, rec, &tx)
	if tx.ID == "" || tx.TotalAmount != 1050 || tx.Status != models.FeePending || tx.Date == "" {
		t.Fatalf("recorded = %+v", tx)
	}

	var pending []models.FeeTransaction
	decode(t, ts.do(t, http.MethodGet, "/api/v1/fees?status=Pending", nil), &pending)
	if len(pending) != 1 {
		t.Errorf("pending = %+v", pending)
	}

	path := "/api/v1/fees/" + tx.ID + "/status"
	var verified models.FeeTransaction
	decode(t, ts.do(t, http.MethodPatch, path, map[string]string{"status": "Verified"}), &verified)
	if verified.Status != models.FeeVerified {
		t.Errorf("after verify = %+v", verified)
	}

	expectErrorCode(t, ts.do(t, http.MethodPatch, path, map[string]string{"status": "Rejected"}), http.StatusConflict, "CONFLICT")
	expectErrorCode(t, ts.do(t, http.MethodPatch, "/api/v1/fees/nope/status", map[string]string{"status": "Verified"}), http.StatusNotFound, "NOT_FOUND")

	var collected map[string]float64
	decode(t, ts.do(t, http.MethodGet, "/api/v1/fees/collected", nil), &collected)
	if collected["S1"] != 1050 {
		t.Errorf("collected = %v", collected)
	}
}

func TestFees_NewestFirst(t *testing.T) {
	ts := newTestServer(t, false)
	for _, id := range []string{"T1", "T2"} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/fees", models.FeeTransaction{ID: id, StudentID: "S1", TotalAmount: 10}), http.StatusCreated)
	}

	var fees []models.FeeTransaction
	decode(t, ts.do(t, http.MethodGet, "/api/v1/fees?studentId=S1", nil), &fees)
	if len(fees) != 2 || fees[0].ID != "T2" {
		t.Errorf("fees = %+v, want T2 first", fees)
	}
}

func TestAttendance_DoubleSubmitKeepsBoth(t *testing.T) {
	ts := newTestServer(t, false)
	register := []models.AttendanceRecord{
		{Date: "2024-06-03", StudentID: "S1", ClassName: "5", Status: models.AttendancePresent},
		{Date: "2024-06-03", StudentID: "S2", ClassName: "5", Status: models.AttendanceAbsent},
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/attendance", register), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/attendance", register), http.StatusCreated)

	var rows []models.AttendanceRecord
	decode(t, ts.do(t, http.MethodGet, "/api/v1/attendance?date=2024-06-03&class=5", nil), &rows)
	if len(rows) != 4 {
		t.Errorf("rows = %d, want 4", len(rows))
	}

	var submitted struct {
		Submitted bool `json:"submitted"`
	}
	decode(t, ts.do(t, http.MethodGet, "/api/v1/attendance/submitted?date=2024-06-03&class=5", nil), &submitted)
	if !submitted.Submitted {
		t.Error("register should be reported as submitted")
	}
	expectErrorCode(t, ts.do(t, http.MethodGet, "/api/v1/attendance/submitted", nil), http.StatusBadRequest, "BAD_REQUEST")
}

func TestMarks_DerivedIdentity(t *testing.T) {
	ts := newTestServer(t, false)
	batch := []models.ExamMark{
		{StudentID: "S1", ExamName: "Term 1", Subject: "Maths", MarksObtained: 80, MaxMarks: 100, ClassName: "5"},
	}

	var saved []models.ExamMark
	decode(t, ts.do(t, http.MethodPost, "/api/v1/marks", batch), &saved)
	if len(saved) != 1 || saved[0].ID == "" {
		t.Fatalf("saved = %+v", saved)
	}

	// re-entering corrects in place
	batch[0].MarksObtained = 85
	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/marks", batch), http.StatusOK)

	var marks []models.ExamMark
	decode(t, ts.do(t, http.MethodGet, "/api/v1/marks?exam=Term%201&class=5", nil), &marks)
	if len(marks) != 1 || marks[0].MarksObtained != 85 {
		t.Errorf("marks = %+v", marks)
	}

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/v1/marks/"+saved[0].ID, nil), http.StatusNoContent)
	if len(ts.repos.Marks.GetAll()) != 0 {
		t.Error("mark should be deleted")
	}
}

func TestNotifications_Audience(t *testing.T) {
	ts := newTestServer(t, false)
	for _, n := range []models.Notification{
		{Title: "Holiday", To: models.AudienceAll},
		{Title: "Staff meeting", To: models.AudienceTeachers},
		{Title: "Class 5 trip", To: "5"},
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/notifications", n), http.StatusCreated)
	}

	var forStudent []models.Notification
	decode(t, ts.do(t, http.MethodGet, "/api/v1/notifications?role=Student&class=5", nil), &forStudent)
	if len(forStudent) != 2 || forStudent[0].Title != "Class 5 trip" {
		t.Errorf("student notices = %+v", forStudent)
	}

	expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/notifications", models.Notification{To: models.AudienceAll}),
		http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestSchedule_ReplaceIsLocalOnly(t *testing.T) {
	ts := newTestServer(t, true)
	slots := []models.TimeSlot{
		{ID: "P1", Day: "Mon", Period: 1, StartTime: "09:00", EndTime: "09:45", ClassName: "5", TeacherID: "T1"},
		{ID: "P2", Day: "Tue", Period: 1, StartTime: "09:00", EndTime: "09:45", ClassName: "6", TeacherID: "T1"},
	}

	expectStatus(t, ts.do(t, http.MethodPut, "/api/v1/schedule", slots), http.StatusOK)
	ts.engine.Flush()
	if n := ts.remote.pushCount(); n != 0 {
		t.Errorf("schedule replace pushed %d times", n)
	}

	var mon []models.TimeSlot
	decode(t, ts.do(t, http.MethodGet, "/api/v1/schedule?class=5&day=Mon", nil), &mon)
	if len(mon) != 1 || mon[0].ID != "P1" {
		t.Errorf("class 5 Monday = %+v", mon)
	}

	var teacher []models.TimeSlot
	decode(t, ts.do(t, http.MethodGet, "/api/v1/schedule?teacherId=T1", nil), &teacher)
	if len(teacher) != 2 {
		t.Errorf("teacher slots = %+v", teacher)
	}
}

func TestMutation_SchedulesPush(t *testing.T) {
	ts := newTestServer(t, true)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/v1/students",
		models.Student{ID: "S1", AdmissionNo: "A1", FirstName: "Asha"}), http.StatusOK)
	ts.engine.Flush()

	if n := ts.remote.pushCount(); n != 1 {
		t.Errorf("pushes = %d, want 1", n)
	}
}
