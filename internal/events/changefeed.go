// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package events

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/logging"
)

// TopicRecordsChanged is the Watermill topic carrying change signals.
const TopicRecordsChanged = "records.changed"

// ChangeEvent is the message body published for each bus signal.
type ChangeEvent struct {
	Sequence uint64    `json:"sequence"`
	At       time.Time `json:"at"`
}

// Sink receives relayed change events.
type Sink func(ctx context.Context, ev ChangeEvent)

// ChangeFeed forwards bus signals to a Watermill gochannel topic and relays
// them to a Sink from its own goroutine.
type ChangeFeed struct {
	pubsub *gochannel.GoChannel
	sink   Sink
	seq    atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
}

// NewChangeFeed creates a feed delivering to sink. buffer is the per
// subscriber output buffer.
func NewChangeFeed(sink Sink, buffer int64) *ChangeFeed {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())
	return &ChangeFeed{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            buffer,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
		sink:  sink,
		ready: make(chan struct{}),
	}
}

// Attach subscribes the feed to bus and returns the unsubscribe function.
func (f *ChangeFeed) Attach(bus *Bus) func() {
	return bus.Subscribe(f.Notify)
}

// Notify publishes one change message. It never blocks on the sink.
func (f *ChangeFeed) Notify() {
	ev := ChangeEvent{Sequence: f.seq.Add(1), At: time.Now().UTC()}
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to encode change event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("sequence", strconv.FormatUint(ev.Sequence, 10))
	if err := f.pubsub.Publish(TopicRecordsChanged, msg); err != nil {
		logging.Warn().Err(err).Msg("Failed to publish change event")
	}
}

// Ready is closed once Serve has subscribed to the topic.
func (f *ChangeFeed) Ready() <-chan struct{} {
	return f.ready
}

// Serve relays messages to the sink until ctx is canceled.
// Implements suture.Service.
func (f *ChangeFeed) Serve(ctx context.Context) error {
	messages, err := f.pubsub.Subscribe(ctx, TopicRecordsChanged)
	if err != nil {
		return err
	}
	f.readyOnce.Do(func() { close(f.ready) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ctx.Err()
			}
			var ev ChangeEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().Err(err).Str("uuid", msg.UUID).Msg("Dropping malformed change event")
				msg.Ack()
				continue
			}
			f.sink(ctx, ev)
			msg.Ack()
		}
	}
}

// Close shuts the underlying pub/sub down.
func (f *ChangeFeed) Close() error {
	return f.pubsub.Close()
}

// String implements fmt.Stringer for supervisor logging.
func (f *ChangeFeed) String() string {
	return "change-feed"
}
