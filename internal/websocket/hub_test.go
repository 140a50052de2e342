// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func testClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.clients == nil || hub.broadcast == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("NewHub left fields uninitialized")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
	if hub.String() != "websocket-hub" {
		t.Errorf("String() = %q", hub.String())
	}
}

func TestHub_DataChanged(t *testing.T) {
	hub := startHub(t)
	a, b := testClient(hub, 4), testClient(hub, 4)
	hub.Register <- a
	hub.Register <- b

	at := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	hub.DataChanged(context.Background(), events.ChangeEvent{Sequence: 7, At: at})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeDataChanged {
			t.Errorf("Type = %q", msg.Type)
		}
		data, ok := msg.Data.(DataChangedData)
		if !ok {
			t.Fatalf("Data = %T", msg.Data)
		}
		if data.Sequence != 7 || data.At != "2024-06-03T09:30:00Z" {
			t.Errorf("Data = %+v", data)
		}
	}
}

func TestHub_DataChangedWireFormat(t *testing.T) {
	msg := Message{Type: MessageTypeDataChanged, Data: DataChangedData{At: "2024-06-03T09:30:00Z", Sequence: 1}}
	raw, err := MarshalMessage(msg)
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Type string `json:"type"`
		Data struct {
			At string `json:"at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Type != "data_changed" || doc.Data.At != "2024-06-03T09:30:00Z" {
		t.Errorf("wire = %s", raw)
	}
}

func TestHub_SyncCompleted(t *testing.T) {
	hub := startHub(t)
	c := testClient(hub, 4)
	hub.Register <- c

	hub.BroadcastSyncCompleted("pull", []string{"students"}, errors.New("remote_error"))

	msg := receive(t, c)
	data, ok := msg.Data.(SyncCompletedData)
	if msg.Type != MessageTypeSyncCompleted || !ok {
		t.Fatalf("msg = %+v", msg)
	}
	if data.Direction != "pull" || data.Error != "remote_error" || len(data.Collections) != 1 {
		t.Errorf("Data = %+v", data)
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	c := testClient(hub, 1)
	hub.Register <- c
	hub.Unregister <- c
	// second unregister of an unknown client is ignored
	hub.Unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := testClient(hub, 1)
	fast := testClient(hub, 4)
	hub.clients[slow] = true
	hub.clients[fast] = true

	hub.broadcastToClients(Message{Type: MessageTypeDataChanged})
	hub.broadcastToClients(Message{Type: MessageTypeDataChanged})

	if hub.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", hub.ClientCount())
	}
	if _, ok := hub.clients[fast]; !ok {
		t.Error("fast client should remain")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client got %d messages, want 2", len(fast.send))
	}
}

func TestHub_BroadcastChannelFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.DataChanged(context.Background(), events.ChangeEvent{Sequence: uint64(i)})
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("broadcast queue = %d, want full", len(hub.broadcast))
	}
}

func TestHub_ServeClosesClientsOnShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Serve(ctx) }()

	clients := []*Client{testClient(hub, 1), testClient(hub, 1), testClient(hub, 1)}
	for _, c := range clients {
		hub.Register <- c
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}
	for _, c := range clients {
		if _, ok := <-c.send; ok {
			t.Error("client send channel should be closed")
		}
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled = %s", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline = %s", got)
	}
}

func TestHub_ChangeFeedIntegration(t *testing.T) {
	hub := startHub(t)
	c := testClient(hub, 8)
	hub.Register <- c

	feed := events.NewChangeFeed(hub.DataChanged, 8)
	bus := events.NewBus()
	feed.Attach(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = feed.Serve(ctx) }()

	<-feed.Ready()
	bus.Publish()

	msg := receive(t, c)
	if msg.Type != MessageTypeDataChanged {
		t.Errorf("Type = %q", msg.Type)
	}
}
