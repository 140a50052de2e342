// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	gosync "sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/config"
	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/repository"
	"github.com/tomtom215/schoolbook/internal/store"
)

// remote is a fake Apps Script endpoint.
type remote struct {
	mu          gosync.Mutex
	pushes      int
	fetches     int
	lastBody    []byte
	contentType string

	pushStatus int
	pullStatus int
	pullBody   string
}

func (r *remote) handler(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch req.Method {
	case http.MethodPost:
		r.pushes++
		r.lastBody = body
		r.contentType = req.Header.Get("Content-Type")
		if r.pushStatus != 0 {
			w.WriteHeader(r.pushStatus)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	case http.MethodGet:
		r.fetches++
		if r.pullStatus != 0 {
			w.WriteHeader(r.pullStatus)
		}
		_, _ = w.Write([]byte(r.pullBody))
	}
}

func (r *remote) counts() (pushes, fetches int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushes, r.fetches
}

type fixture struct {
	remote    *remote
	server    *httptest.Server
	store     *store.MemoryStore
	repos     *repository.Repositories
	engine    *Engine
	published atomic.Int32
}

// newFixture builds an engine against a fake remote. With online false
// no endpoint is configured.
func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()

	f := &fixture{remote: &remote{}, store: store.NewMemoryStore(0)}
	f.server = httptest.NewServer(http.HandlerFunc(f.remote.handler))
	t.Cleanup(f.server.Close)

	bus := events.NewBus()
	f.repos = repository.New(f.store, bus, nil)
	if online {
		// configured before the engine exists, so this does not push
		if err := f.repos.Config.Put(models.SystemConfig{SchoolName: "Test", AppsScriptURL: f.server.URL}); err != nil {
			t.Fatalf("Config.Put: %v", err)
		}
	}
	bus.Subscribe(func() { f.published.Add(1) })

	cfg := &config.SyncConfig{Timeout: 5 * time.Second}
	f.engine = NewEngine(f.repos, NewClient(cfg), 0)
	t.Cleanup(f.engine.Flush)
	return f
}

func seedStudents(t *testing.T, f *fixture) {
	t.Helper()
	if err := f.repos.Students.Save(
		models.Student{ID: "S1", AdmissionNo: "A100", FirstName: "Asha"},
		models.Student{ID: "S2", AdmissionNo: "A101", FirstName: "Bina"},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.engine.Flush()
}

func TestOffline_NoOutboundCalls(t *testing.T) {
	f := newFixture(t, false)

	_ = f.repos.Students.UpsertByID(models.Student{ID: "S1", AdmissionNo: "A1"})
	_ = f.repos.Fees.Append(models.FeeTransaction{ID: "T1", TotalAmount: 10})
	_ = f.repos.Attendance.SubmitRegister([]models.AttendanceRecord{{Date: "2024-06-03", StudentID: "S1", Status: models.AttendancePresent}})
	if err := f.engine.PushAll(context.Background()); err != nil {
		t.Errorf("PushAll offline = %v, want nil", err)
	}
	f.engine.Flush()

	err := f.engine.PullAll(context.Background())
	if !errors.Is(err, ErrNotConfigured) || KindOf(err) != KindNotConfigured {
		t.Errorf("PullAll offline = %v, want not configured", err)
	}

	if pushes, fetches := f.remote.counts(); pushes != 0 || fetches != 0 {
		t.Errorf("offline engine contacted remote: %d pushes, %d fetches", pushes, fetches)
	}
	if len(f.repos.Students.GetAll()) != 1 {
		t.Error("local writes must succeed offline")
	}
}

func TestPush_SendsFullDatasetAsPlainText(t *testing.T) {
	f := newFixture(t, true)
	seedStudents(t, f)
	_ = f.repos.Schedule.ReplaceAll([]models.TimeSlot{{ID: "P1", Day: "Monday"}})
	f.engine.Flush()

	pushes, _ := f.remote.counts()
	if pushes != 2 {
		t.Fatalf("pushes = %d, want 2 (one per mutation)", pushes)
	}

	f.remote.mu.Lock()
	body, ct := f.remote.lastBody, f.remote.contentType
	f.remote.mu.Unlock()

	if ct != "text/plain;charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("push body is not JSON: %v", err)
	}
	if len(doc) != len(CollectionMappings) {
		t.Errorf("push keys = %d, want %d", len(doc), len(CollectionMappings))
	}
	for _, m := range CollectionMappings {
		if _, ok := doc[m.PushKey]; !ok {
			t.Errorf("push body missing key %q", m.PushKey)
		}
	}
	if _, ok := doc["schedule"]; ok {
		t.Error("schedule is local-only and must not be pushed")
	}

	var payload PushPayload
	_ = json.Unmarshal(body, &payload)
	if len(payload.Students) != 2 || payload.Fees == nil || string(doc["fees"]) != "[]" {
		t.Errorf("payload = %s", body)
	}
}

func TestPush_FailureNeverSurfaces(t *testing.T) {
	f := newFixture(t, true)
	f.remote.pushStatus = http.StatusInternalServerError

	if err := f.repos.Students.UpsertByID(models.Student{ID: "S1", AdmissionNo: "A1"}); err != nil {
		t.Fatalf("mutation should succeed despite push failure: %v", err)
	}
	f.engine.Flush()

	if pushes, _ := f.remote.counts(); pushes != 1 {
		t.Errorf("pushes = %d, want 1", pushes)
	}
	if len(f.repos.Students.GetAll()) != 1 {
		t.Error("local state lost after failed push")
	}

	err := f.engine.PushAll(context.Background())
	if KindOf(err) != KindTransport {
		t.Errorf("direct PushAll = %v, want transport error", err)
	}
}

func TestPull_ReplacesPresentCollections(t *testing.T) {
	f := newFixture(t, true)
	seedStudents(t, f)
	_ = f.repos.Staff.UpsertByID(models.Staff{ID: "T1", Name: "Iyer", Role: models.RoleTeacher})
	f.engine.Flush()
	staffBefore := f.store.Read(store.SlotStaff)
	pushesBefore, _ := f.remote.counts()
	f.published.Store(0)

	f.remote.pullBody = `{"status":"success","data":{
		"studentmaster":[{"id":"S9","admissionNo":"R1","firstName":"Remote"}],
		"feeledger":[{"id":"T1","totalAmount":2500,"status":"Verified"}],
		"exammarks":[]
	}}`

	if err := f.engine.PullAll(context.Background()); err != nil {
		t.Fatalf("PullAll: %v", err)
	}
	f.engine.Flush()

	students := f.repos.Students.GetAll()
	if len(students) != 1 || students[0].ID != "S9" {
		t.Errorf("students = %+v, want remote set", students)
	}
	fees := f.repos.Fees.GetAll()
	if len(fees) != 1 || fees[0].Status != models.FeeVerified {
		t.Errorf("fees = %+v", fees)
	}
	if got := string(f.store.Read(store.SlotMarks)); got != "[]" {
		t.Errorf("empty remote array should clear marks, got %q", got)
	}
	if !bytes.Equal(f.store.Read(store.SlotStaff), staffBefore) {
		t.Error("absent key must leave staff untouched")
	}
	if got := f.published.Load(); got != 1 {
		t.Errorf("published %d times, want 1", got)
	}
	if pushes, _ := f.remote.counts(); pushes != pushesBefore {
		t.Error("pull must not schedule a push")
	}
}

func TestPull_NullKeyIsAbsent(t *testing.T) {
	f := newFixture(t, true)
	seedStudents(t, f)
	before := f.store.Read(store.SlotStudents)

	f.remote.pullBody = `{"status":"success","data":{"studentmaster":null,"notifications":[]}}`
	if err := f.engine.PullAll(context.Background()); err != nil {
		t.Fatalf("PullAll: %v", err)
	}
	if !bytes.Equal(f.store.Read(store.SlotStudents), before) {
		t.Error("null key should not replace students")
	}
}

func TestPull_FailuresLeaveStoreUntouched(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{"http error", http.StatusBadGateway, "upstream down", KindTransport},
		{"not json", 0, "<html>sign in</html>", KindMalformed},
		{"remote error", 0, `{"status":"error","message":"sheet locked"}`, KindRemoteError},
		{"unknown status", 0, `{"status":"pending"}`, KindMalformed},
		{"key is an object", 0, `{"status":"success","data":{"studentmaster":{"id":"S1"}}}`, KindMalformed},
		{"one bad key spoils all", 0, `{"status":"success","data":{"feeledger":[],"staffdirectory":[{"salary":"lots"}]}}`, KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			seedStudents(t, f)
			_ = f.repos.Fees.Append(models.FeeTransaction{ID: "T1", TotalAmount: 5})
			f.engine.Flush()
			snapshot := f.store.Snapshot()
			f.published.Store(0)

			f.remote.pullStatus = tt.status
			f.remote.pullBody = tt.body

			err := f.engine.PullAll(context.Background())
			if KindOf(err) != tt.wantKind {
				t.Fatalf("PullAll = %v, want kind %s", err, tt.wantKind)
			}

			after := f.store.Snapshot()
			if len(after) != len(snapshot) {
				t.Fatalf("slot count changed: %d -> %d", len(snapshot), len(after))
			}
			for slot, raw := range snapshot {
				if !bytes.Equal(after[slot], raw) {
					t.Errorf("slot %s changed after failed pull", slot)
				}
			}
			if f.published.Load() != 0 {
				t.Error("failed pull must not publish")
			}
		})
	}
}

func TestPull_PersistenceFailure(t *testing.T) {
	f := newFixture(t, true)
	f.remote.pullBody = `{"status":"success","data":{"studentmaster":[]}}`
	f.store.FailWrites(errors.New("disk full"))

	err := f.engine.PullAll(context.Background())
	var pe *store.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("PullAll = %v, want *store.PersistenceError", err)
	}
}

// blockingTransport parks every Fetch until release is closed.
type blockingTransport struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTransport) Push(context.Context, string, []byte) error { return nil }

func (b *blockingTransport) Fetch(ctx context.Context, _ string) ([]byte, error) {
	b.entered <- struct{}{}
	<-b.release
	return []byte(`{"status":"success"}`), nil
}

func TestPull_ConcurrentCallIsRejected(t *testing.T) {
	repos := repository.New(store.NewMemoryStore(0), events.NewBus(), nil)
	_ = repos.Config.Put(models.SystemConfig{AppsScriptURL: "https://example.com/exec"})
	bt := &blockingTransport{entered: make(chan struct{}, 1), release: make(chan struct{})}
	engine := NewEngine(repos, bt, 0)

	done := make(chan error, 1)
	go func() { done <- engine.PullAll(context.Background()) }()
	<-bt.entered

	err := engine.PullAll(context.Background())
	if KindOf(err) != KindInProgress || !errors.Is(err, ErrPullInProgress) {
		t.Errorf("second PullAll = %v, want in_progress", err)
	}

	close(bt.release)
	if err := <-done; err != nil {
		t.Errorf("first PullAll = %v", err)
	}
	if err := engine.PullAll(context.Background()); err != nil {
		t.Errorf("PullAll after release = %v", err)
	}
}

// gatedTransport counts pushes and holds the first one until release.
type gatedTransport struct {
	mu      gosync.Mutex
	bodies  [][]byte
	entered chan struct{}
	release chan struct{}
}

func (g *gatedTransport) Push(_ context.Context, _ string, body []byte) error {
	g.mu.Lock()
	g.bodies = append(g.bodies, body)
	first := len(g.bodies) == 1
	g.mu.Unlock()
	if first {
		g.entered <- struct{}{}
		<-g.release
	}
	return nil
}

func (g *gatedTransport) Fetch(context.Context, string) ([]byte, error) { return nil, nil }

func (g *gatedTransport) pushes() [][]byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]byte(nil), g.bodies...)
}

func TestPusher_CoalescesBursts(t *testing.T) {
	repos := repository.New(store.NewMemoryStore(0), events.NewBus(), nil)
	_ = repos.Config.Put(models.SystemConfig{AppsScriptURL: "https://example.com/exec"})
	gt := &gatedTransport{entered: make(chan struct{}, 1), release: make(chan struct{})}
	engine := NewEngine(repos, gt, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pusher := engine.Pusher()
	go func() { _ = pusher.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !engine.serving.Load() {
		if time.Now().After(deadline) {
			t.Fatal("pusher did not start")
		}
		time.Sleep(time.Millisecond)
	}

	_ = repos.Students.UpsertByID(models.Student{ID: "S0", AdmissionNo: "A0"})
	<-gt.entered

	for _, id := range []string{"S1", "S2", "S3", "S4", "S5"} {
		if err := repos.Students.UpsertByID(models.Student{ID: id, AdmissionNo: "N" + id}); err != nil {
			t.Fatalf("UpsertByID: %v", err)
		}
	}
	close(gt.release)

	deadline = time.Now().Add(2 * time.Second)
	for len(gt.pushes()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("pushes = %d, want 2", len(gt.pushes()))
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	bodies := gt.pushes()
	if len(bodies) != 2 {
		t.Fatalf("pushes = %d, want 2 (burst coalesced)", len(bodies))
	}
	var last PushPayload
	if err := json.Unmarshal(bodies[1], &last); err != nil {
		t.Fatal(err)
	}
	if len(last.Students) != 6 {
		t.Errorf("coalesced push carries %d students, want the latest 6", len(last.Students))
	}
	if pusher.String() != "sync-pusher" {
		t.Errorf("String() = %q", pusher.String())
	}
}

func TestPusher_DrainsQueuedPushOnStop(t *testing.T) {
	repos := repository.New(store.NewMemoryStore(0), events.NewBus(), nil)
	_ = repos.Config.Put(models.SystemConfig{AppsScriptURL: "https://example.com/exec"})
	gt := &gatedTransport{entered: make(chan struct{}, 1), release: make(chan struct{})}
	engine := NewEngine(repos, gt, 0)

	ctx, cancel := context.WithCancel(context.Background())
	pusher := engine.Pusher()
	done := make(chan error, 1)
	go func() { done <- pusher.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !engine.serving.Load() {
		if time.Now().After(deadline) {
			t.Fatal("pusher did not start")
		}
		time.Sleep(time.Millisecond)
	}

	_ = repos.Students.UpsertByID(models.Student{ID: "S0", AdmissionNo: "A0"})
	<-gt.entered
	if err := repos.Students.UpsertByID(models.Student{ID: "S1", AdmissionNo: "A1"}); err != nil {
		t.Fatalf("UpsertByID: %v", err)
	}

	cancel()
	close(gt.release)

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pusher did not stop")
	}
	if engine.serving.Load() {
		t.Error("pusher still marked serving")
	}

	bodies := gt.pushes()
	if len(bodies) != 2 {
		t.Fatalf("pushes = %d, want 2 (queued change sent before stopping)", len(bodies))
	}
	var last PushPayload
	if err := json.Unmarshal(bodies[1], &last); err != nil {
		t.Fatal(err)
	}
	if len(last.Students) != 2 {
		t.Errorf("final push carries %d students, want 2", len(last.Students))
	}

	// after stopping, pushes run on their own goroutines
	_ = repos.Students.UpsertByID(models.Student{ID: "S2", AdmissionNo: "A2"})
	engine.Flush()
	if n := len(gt.pushes()); n != 3 {
		t.Errorf("pushes after stop = %d, want 3", n)
	}
}

func TestOnSyncCompleted(t *testing.T) {
	f := newFixture(t, true)

	type call struct {
		direction   string
		collections []string
		kind        Kind
	}
	var (
		mu    gosync.Mutex
		calls []call
	)
	f.engine.SetOnSyncCompleted(func(direction string, collections []string, err error) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, call{direction, collections, KindOf(err)})
	})

	if err := f.engine.PushAll(context.Background()); err != nil {
		t.Fatalf("PushAll: %v", err)
	}

	f.remote.pullBody = `{"status":"success","data":{"studentmaster":[],"staffdirectory":[]}}`
	if err := f.engine.PullAll(context.Background()); err != nil {
		t.Fatalf("PullAll: %v", err)
	}

	f.remote.pullBody = `{"status":"error","message":"sheet locked"}`
	_ = f.engine.PullAll(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 3 {
		t.Fatalf("callback ran %d times, want 3: %+v", len(calls), calls)
	}
	if calls[0].direction != "push" || calls[0].kind != "" {
		t.Errorf("push call = %+v", calls[0])
	}
	if calls[1].direction != "pull" || len(calls[1].collections) != 2 || calls[1].kind != "" {
		t.Errorf("pull call = %+v", calls[1])
	}
	if calls[2].kind != KindRemoteError {
		t.Errorf("failed pull call = %+v", calls[2])
	}
}
