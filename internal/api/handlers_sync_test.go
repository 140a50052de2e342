// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/roster"
)

func TestConfig_CredentialsMasked(t *testing.T) {
	ts := newTestServer(t, false)

	put := models.SystemConfig{SchoolName: "Green Valley", DBUser: "admin", DBPassword: "hunter2-secret"}
	var view configView
	decode(t, ts.do(t, http.MethodPut, "/api/v1/config", put), &view)
	if view.DBPassword != "****...cret" || view.DBUser != "****...dmin" || !view.Offline {
		t.Fatalf("PUT response = %+v", view)
	}

	// sending the masked values back keeps the stored credentials
	view.SchoolName = "Green Valley School"
	expectStatus(t, ts.do(t, http.MethodPut, "/api/v1/config", view.SystemConfig), http.StatusOK)

	stored := ts.repos.Config.Get()
	if stored.DBPassword != "hunter2-secret" || stored.DBUser != "admin" || stored.SchoolName != "Green Valley School" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestConfig_InvalidEndpoint(t *testing.T) {
	ts := newTestServer(t, false)
	expectErrorCode(t, ts.do(t, http.MethodPut, "/api/v1/config", models.SystemConfig{AppsScriptURL: "not a url"}),
		http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestSession_Lifecycle(t *testing.T) {
	ts := newTestServer(t, true)

	expectErrorCode(t, ts.do(t, http.MethodGet, "/api/v1/session", nil), http.StatusNotFound, "NOT_FOUND")

	s := models.Session{ID: "T1", Name: "Iyer", Role: models.RoleTeacher}
	expectStatus(t, ts.do(t, http.MethodPut, "/api/v1/session", s), http.StatusOK)

	var got models.Session
	decode(t, ts.do(t, http.MethodGet, "/api/v1/session", nil), &got)
	if got.ID != "T1" || got.Role != models.RoleTeacher {
		t.Errorf("session = %+v", got)
	}

	ts.engine.Flush()
	if n := ts.remote.pushCount(); n != 0 {
		t.Errorf("session change pushed %d times", n)
	}

	expectErrorCode(t, ts.do(t, http.MethodPut, "/api/v1/session", models.Session{ID: "X", Role: "Janitor"}),
		http.StatusBadRequest, "VALIDATION_FAILED")

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/v1/session", nil), http.StatusNoContent)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/v1/session", nil), http.StatusNotFound)
}

func TestSync_Offline(t *testing.T) {
	ts := newTestServer(t, false)

	env := expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/sync/pull", nil), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
	if env.Error.Details["kind"] != "not_configured" {
		t.Errorf("details = %v", env.Error.Details)
	}

	var res SyncResult
	decode(t, ts.do(t, http.MethodPost, "/api/v1/sync/push", nil), &res)
	if res.Direction != "push" || !res.Offline {
		t.Errorf("offline push = %+v", res)
	}
}

func TestSync_PullReplacesCollections(t *testing.T) {
	ts := newTestServer(t, true)
	if err := ts.repos.Staff.UpsertByID(models.Staff{ID: "OLD", Name: "Gone", Role: models.RoleTeacher}); err != nil {
		t.Fatal(err)
	}
	ts.engine.Flush()
	pushesBefore := ts.remote.pushCount()

	ts.remote.setPull(0, `{"status":"success","data":{
		"studentmaster":[{"id":"S9","admissionNo":"A9","firstName":"Remote"}],
		"staffdirectory":[]
	}}`)

	var res SyncResult
	decode(t, ts.do(t, http.MethodPost, "/api/v1/sync/pull", nil), &res)
	if res.Direction != "pull" || res.Offline {
		t.Errorf("pull result = %+v", res)
	}

	if s, ok := ts.repos.Students.Find("S9"); !ok || s.FirstName != "Remote" {
		t.Errorf("pulled student = %+v, %v", s, ok)
	}
	if n := len(ts.repos.Staff.GetAll()); n != 0 {
		t.Errorf("staff after pull = %d, want 0", n)
	}

	ts.engine.Flush()
	if ts.remote.pushCount() != pushesBefore {
		t.Error("pull must not schedule a push")
	}
}

func TestSync_RemoteErrorLeavesDataAlone(t *testing.T) {
	ts := newTestServer(t, true)
	if err := ts.repos.Students.UpsertByID(models.Student{ID: "S1", AdmissionNo: "A1"}); err != nil {
		t.Fatal(err)
	}
	ts.remote.setPull(0, `{"status":"error","message":"sheet locked"}`)

	env := expectErrorCode(t, ts.do(t, http.MethodPost, "/api/v1/sync/pull", nil), http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED")
	if env.Error.Details["kind"] != "remote_error" {
		t.Errorf("details = %v", env.Error.Details)
	}
	if len(ts.repos.Students.GetAll()) != 1 {
		t.Error("failed pull changed local data")
	}
}

func TestSync_UnavailableWithoutEngine(t *testing.T) {
	ts := newTestServer(t, false)
	h := NewHandler(ts.repos, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.SyncPush(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/push", nil))
	expectErrorCode(t, rec, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
}

func rosterUpload(t *testing.T, rows ...[]interface{}) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	xlsx, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(xlsx.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestRoster_ImportAndExport(t *testing.T) {
	ts := newTestServer(t, false)
	if err := ts.repos.Students.UpsertByID(models.Student{ID: "S1", AdmissionNo: "A1", FirstName: "Old"}); err != nil {
		t.Fatal(err)
	}

	body, contentType := rosterUpload(t,
		[]interface{}{"Admission No", "First Name", "Class"},
		[]interface{}{"A1", "Asha", "5"},
		[]interface{}{"A2", "Ben", "5"},
		[]interface{}{"", "Nobody", "5"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/roster/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	var res roster.Result
	decode(t, rec, &res)
	if res.Imported != 1 || res.Updated != 1 || len(res.Skipped) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if s, _ := ts.repos.Students.Find("S1"); s.FirstName != "Asha" {
		t.Errorf("existing student not merged: %+v", s)
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/export.xlsx", nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "schoolbook-") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(roster.SheetStudents)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("student rows = %d, want header plus 2", len(rows))
	}
}

func TestRoster_RejectsNonWorkbook(t *testing.T) {
	ts := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/roster/import", strings.NewReader("admissionNo,firstName\nA1,Asha\n"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	expectErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestRoster_MissingFileField(t *testing.T) {
	ts := newTestServer(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("other", "x")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/roster/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	expectErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}
