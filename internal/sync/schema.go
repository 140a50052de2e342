// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/repository"
	"github.com/tomtom215/schoolbook/internal/store"
)

// PushPayload is the document POSTed to the remote endpoint. Every push
// carries the full local dataset.
type PushPayload struct {
	Students      []models.Student          `json:"students"`
	Fees          []models.FeeTransaction   `json:"fees"`
	Staff         []models.Staff            `json:"staff"`
	Attendance    []models.AttendanceRecord `json:"attendance"`
	Marks         []models.ExamMark         `json:"marks"`
	Notifications []models.Notification     `json:"notifications"`
}

// NewPushPayload builds a payload from a dataset snapshot.
func NewPushPayload(ds repository.Dataset) PushPayload {
	return PushPayload{
		Students:      ds.Students,
		Fees:          ds.Fees,
		Staff:         ds.Staff,
		Attendance:    ds.Attendance,
		Marks:         ds.Marks,
		Notifications: ds.Notifications,
	}
}

// PullResponse is the document returned by a GET on the remote endpoint.
type PullResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Data    *PullData `json:"data,omitempty"`
}

// PullData holds the remote collections undecoded so an absent key can be
// told apart from an empty one.
type PullData struct {
	StudentMaster  json.RawMessage `json:"studentmaster,omitempty"`
	FeeLedger      json.RawMessage `json:"feeledger,omitempty"`
	StaffDirectory json.RawMessage `json:"staffdirectory,omitempty"`
	AttendanceLogs json.RawMessage `json:"attendancelogs,omitempty"`
	ExamMarks      json.RawMessage `json:"exammarks,omitempty"`
	Notifications  json.RawMessage `json:"notifications,omitempty"`
}

// Field returns the raw value under a pull key. A missing key or a JSON
// null yields nil.
func (d *PullData) Field(pullKey string) json.RawMessage {
	if d == nil {
		return nil
	}
	var raw json.RawMessage
	switch pullKey {
	case "studentmaster":
		raw = d.StudentMaster
	case "feeledger":
		raw = d.FeeLedger
	case "staffdirectory":
		raw = d.StaffDirectory
	case "attendancelogs":
		raw = d.AttendanceLogs
	case "exammarks":
		raw = d.ExamMarks
	case "notifications":
		raw = d.Notifications
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

// CollectionMapping ties a local slot to its keys in the push and pull
// documents.
type CollectionMapping struct {
	Slot    string
	PushKey string
	PullKey string

	// canonical decodes a pulled array into typed records and re-encodes it
	// in the local slot format.
	canonical func(raw json.RawMessage) ([]byte, error)
}

// CollectionMappings lists every synchronized collection. Schedule, config
// and session stay local.
var CollectionMappings = []CollectionMapping{
	{Slot: store.SlotStudents, PushKey: "students", PullKey: "studentmaster", canonical: canonical[models.Student](store.SlotStudents)},
	{Slot: store.SlotFees, PushKey: "fees", PullKey: "feeledger", canonical: canonical[models.FeeTransaction](store.SlotFees)},
	{Slot: store.SlotStaff, PushKey: "staff", PullKey: "staffdirectory", canonical: canonical[models.Staff](store.SlotStaff)},
	{Slot: store.SlotAttendance, PushKey: "attendance", PullKey: "attendancelogs", canonical: canonical[models.AttendanceRecord](store.SlotAttendance)},
	{Slot: store.SlotMarks, PushKey: "marks", PullKey: "exammarks", canonical: canonical[models.ExamMark](store.SlotMarks)},
	{Slot: store.SlotNotifications, PushKey: "notifications", PullKey: "notifications", canonical: canonical[models.Notification](store.SlotNotifications)},
}

func canonical[T any](slot string) func(json.RawMessage) ([]byte, error) {
	return func(raw json.RawMessage) ([]byte, error) {
		var recs []T
		if err := json.Unmarshal(raw, &recs); err != nil {
			return nil, err
		}
		return store.EncodeCollection(slot, recs)
	}
}

// DecodePull parses a pull response body into slot values ready for
// Store.WriteMany. Only keys present in the response appear in the result.
// Nothing is returned unless every present key decodes.
func DecodePull(body []byte) (map[string][]byte, error) {
	var resp PullResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformed("response is not a pull document: %w", err)
	}

	switch resp.Status {
	case "success":
	case "error":
		msg := resp.Message
		if msg == "" {
			msg = "remote reported an error"
		}
		return nil, &SyncError{Kind: KindRemoteError, Err: errors.New(msg)}
	default:
		return nil, malformed("unexpected status %q", resp.Status)
	}

	slots := make(map[string][]byte, len(CollectionMappings))
	for _, m := range CollectionMappings {
		raw := resp.Data.Field(m.PullKey)
		if raw == nil {
			continue
		}
		encoded, err := m.canonical(raw)
		if err != nil {
			return nil, malformed("collection %s: %w", m.PullKey, err)
		}
		slots[m.Slot] = encoded
	}
	return slots, nil
}
