// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStoreWrite(t *testing.T) {
	before := testutil.ToFloat64(StoreWriteErrors.WithLabelValues("students", "quota"))

	RecordStoreWrite("students", 512, time.Millisecond, "", nil)
	if got := testutil.ToFloat64(StoreSlotBytes.WithLabelValues("students")); got != 512 {
		t.Errorf("slot bytes = %v, want 512", got)
	}

	RecordStoreWrite("students", 0, time.Millisecond, "quota", errors.New("too big"))
	if got := testutil.ToFloat64(StoreWriteErrors.WithLabelValues("students", "quota")); got != before+1 {
		t.Errorf("write errors = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(StoreSlotBytes.WithLabelValues("students")); got != 512 {
		t.Errorf("failed write should not change slot bytes, got %v", got)
	}
}

func TestRecordMutation(t *testing.T) {
	before := testutil.ToFloat64(RepositoryMutations.WithLabelValues("fees", "append", "success"))

	RecordMutation("fees", "append", "success", 7)
	RecordMutation("fees", "append", "invalid", 0)

	if got := testutil.ToFloat64(RepositoryMutations.WithLabelValues("fees", "append", "success")); got != before+1 {
		t.Errorf("mutations = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(RepositoryRecords.WithLabelValues("fees")); got != 7 {
		t.Errorf("records gauge = %v, want 7", got)
	}
}

func TestRecordPush(t *testing.T) {
	tests := []struct {
		result string
	}{
		{"success"},
		{"failure"},
		{"skipped"},
	}
	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			before := testutil.ToFloat64(SyncPushes.WithLabelValues(tt.result))
			RecordPush(tt.result, 2048, 20*time.Millisecond)
			if got := testutil.ToFloat64(SyncPushes.WithLabelValues(tt.result)); got != before+1 {
				t.Errorf("pushes{%s} = %v, want %v", tt.result, got, before+1)
			}
		})
	}
	if testutil.ToFloat64(SyncLastSuccess.WithLabelValues("push")) == 0 {
		t.Error("last push success timestamp not set")
	}
}

func TestRecordPull(t *testing.T) {
	before := testutil.ToFloat64(SyncPulls.WithLabelValues("malformed"))
	RecordPull("malformed", time.Millisecond)
	if got := testutil.ToFloat64(SyncPulls.WithLabelValues("malformed")); got != before+1 {
		t.Errorf("pulls{malformed} = %v, want %v", got, before+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/students", "200"))
	RecordAPIRequest("GET", "/api/v1/students", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/students", "200")); got != before+1 {
		t.Errorf("api requests = %v, want %v", got, before+1)
	}
}
