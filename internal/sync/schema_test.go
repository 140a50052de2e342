// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/repository"
	"github.com/tomtom215/schoolbook/internal/store"
)

func TestCollectionMappings_Unique(t *testing.T) {
	slots := map[string]bool{}
	push := map[string]bool{}
	pull := map[string]bool{}
	for _, m := range CollectionMappings {
		if slots[m.Slot] || push[m.PushKey] || pull[m.PullKey] {
			t.Errorf("duplicate mapping entry %+v", m)
		}
		slots[m.Slot], push[m.PushKey], pull[m.PullKey] = true, true, true
	}

	for _, local := range []string{store.SlotSchedule, store.SlotConfig, store.SlotSession} {
		if slots[local] {
			t.Errorf("slot %s must not be synchronized", local)
		}
	}
}

func TestNewPushPayload_KeysMatchMappings(t *testing.T) {
	repos := repository.New(store.NewMemoryStore(0), events.NewBus(), nil)
	body, err := json.Marshal(NewPushPayload(repos.Dataset()))
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatal(err)
	}
	for _, m := range CollectionMappings {
		if got := string(doc[m.PushKey]); got != "[]" {
			t.Errorf("empty dataset key %s = %q, want []", m.PushKey, got)
		}
	}
}

func TestPullData_Field(t *testing.T) {
	var nilData *PullData
	if nilData.Field("studentmaster") != nil {
		t.Error("nil PullData should yield nil")
	}

	d := &PullData{
		StudentMaster: json.RawMessage(`[]`),
		FeeLedger:     json.RawMessage(` null `),
	}
	if string(d.Field("studentmaster")) != "[]" {
		t.Error("present empty array should be returned")
	}
	if d.Field("feeledger") != nil {
		t.Error("null should read as absent")
	}
	if d.Field("staffdirectory") != nil {
		t.Error("missing key should read as absent")
	}
	if d.Field("schedule") != nil {
		t.Error("unknown key should read as absent")
	}
}

func TestDecodePull(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantKind  Kind
		wantSlots []string
	}{
		{
			name:      "all keys",
			body:      `{"status":"success","data":{"studentmaster":[],"feeledger":[],"staffdirectory":[],"attendancelogs":[],"exammarks":[],"notifications":[]}}`,
			wantSlots: []string{store.SlotStudents, store.SlotFees, store.SlotStaff, store.SlotAttendance, store.SlotMarks, store.SlotNotifications},
		},
		{
			name:      "partial",
			body:      `{"status":"success","data":{"exammarks":[{"id":"S1_Mid_Maths","marksObtained":40,"maxMarks":50}]}}`,
			wantSlots: []string{store.SlotMarks},
		},
		{
			name:      "no data",
			body:      `{"status":"success"}`,
			wantSlots: nil,
		},
		{
			name:      "unknown keys ignored",
			body:      `{"status":"success","data":{"timetable":[1,2,3],"notifications":[]}}`,
			wantSlots: []string{store.SlotNotifications},
		},
		{name: "empty body", body: ``, wantKind: KindMalformed},
		{name: "array", body: `[]`, wantKind: KindMalformed},
		{name: "missing status", body: `{"data":{}}`, wantKind: KindMalformed},
		{name: "remote error", body: `{"status":"error","message":"quota"}`, wantKind: KindRemoteError},
		{name: "wrong element type", body: `{"status":"success","data":{"feeledger":[{"totalAmount":"ten"}]}}`, wantKind: KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := DecodePull([]byte(tt.body))
			if tt.wantKind != "" {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("DecodePull() error = %v, want kind %s", err, tt.wantKind)
				}
				if slots != nil {
					t.Error("failed decode must not return slots")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePull() error = %v", err)
			}
			if len(slots) != len(tt.wantSlots) {
				t.Fatalf("slots = %d, want %d", len(slots), len(tt.wantSlots))
			}
			for _, s := range tt.wantSlots {
				if _, ok := slots[s]; !ok {
					t.Errorf("missing slot %s", s)
				}
			}
		})
	}
}

func TestDecodePull_RemoteErrorMessage(t *testing.T) {
	_, err := DecodePull([]byte(`{"status":"error","message":"sheet locked"}`))
	if err == nil || !strings.Contains(err.Error(), "sheet locked") {
		t.Errorf("error = %v, want remote message", err)
	}

	_, err = DecodePull([]byte(`{"status":"error"}`))
	if KindOf(err) != KindRemoteError {
		t.Errorf("error without message = %v", err)
	}
}

func TestDecodePull_CanonicalEncoding(t *testing.T) {
	slots, err := DecodePull([]byte(`{"status":"success","data":{"studentmaster":[{"id":"S1","admissionNo":"A1","extra":"dropped"}]}}`))
	if err != nil {
		t.Fatal(err)
	}

	var students []models.Student
	if err := json.Unmarshal(slots[store.SlotStudents], &students); err != nil {
		t.Fatalf("slot value does not decode: %v", err)
	}
	if len(students) != 1 || students[0].AdmissionNo != "A1" {
		t.Errorf("students = %+v", students)
	}
	if strings.Contains(string(slots[store.SlotStudents]), "extra") {
		t.Error("unknown fields should not survive re-encoding")
	}
}

func TestSyncError(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &SyncError{Kind: KindTransport, Err: base})

	if KindOf(err) != KindTransport {
		t.Errorf("KindOf() = %q", KindOf(err))
	}
	if !errors.Is(err, base) {
		t.Error("SyncError should unwrap to its cause")
	}
	if KindOf(base) != "" {
		t.Error("plain error should have no kind")
	}
	if got := (&SyncError{Kind: KindMalformed, Err: base}).Error(); got != "sync malformed: boom" {
		t.Errorf("Error() = %q", got)
	}
}
