// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"context"
	"sort"
	gosync "sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/metrics"
	"github.com/tomtom215/schoolbook/internal/repository"
)

// Engine pushes the local dataset to the remote endpoint and pulls the
// remote snapshot into the local store.
//
// The endpoint is read from the stored school configuration on every
// operation. An empty endpoint means offline: pushes are skipped without
// any network traffic and pulls fail with KindNotConfigured.
type Engine struct {
	repos     *repository.Repositories
	transport Transport

	pullMu gosync.Mutex

	// pending holds at most one queued push for the pusher. queueMu orders
	// enqueueing against the pusher stopping.
	queueMu  gosync.Mutex
	pending  chan struct{}
	serving  atomic.Bool
	inflight gosync.WaitGroup

	failLog rate.Sometimes

	cbMu        gosync.RWMutex
	onCompleted func(direction string, collections []string, err error)
}

// NewEngine creates an engine and installs it as the push scheduler of
// repos. failureLogInterval is the minimum gap between logged push
// failures; 0 logs every failure.
func NewEngine(repos *repository.Repositories, transport Transport, failureLogInterval time.Duration) *Engine {
	e := &Engine{
		repos:     repos,
		transport: transport,
		pending:   make(chan struct{}, 1),
	}
	if failureLogInterval > 0 {
		e.failLog = rate.Sometimes{First: 1, Interval: failureLogInterval}
	} else {
		e.failLog = rate.Sometimes{Every: 1}
	}
	repos.SetScheduler(e)
	return e
}

// SchedulePush requests a background push of the full dataset and returns
// immediately. While a Pusher is serving, requests coalesce into a single
// pending push; otherwise each request runs on its own goroutine.
// Push failures are logged and counted, never returned.
func (e *Engine) SchedulePush() {
	e.queueMu.Lock()
	if e.serving.Load() {
		select {
		case e.pending <- struct{}{}:
		default:
			metrics.SyncPushesCoalesced.Inc()
		}
		e.queueMu.Unlock()
		return
	}
	e.queueMu.Unlock()

	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		e.pushInBackground(context.Background())
	}()
}

// SetOnSyncCompleted registers fn to run after every pull and after every
// push that reached the remote. direction is "push" or "pull"; collections
// lists the slots a successful pull replaced.
func (e *Engine) SetOnSyncCompleted(fn func(direction string, collections []string, err error)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onCompleted = fn
}

func (e *Engine) notifyCompleted(direction string, collections []string, err error) {
	e.cbMu.RLock()
	fn := e.onCompleted
	e.cbMu.RUnlock()
	if fn != nil {
		fn(direction, collections, err)
	}
}

// Flush waits for pushes started outside the pusher to finish.
func (e *Engine) Flush() {
	e.inflight.Wait()
}

// PushAll sends the full dataset to the endpoint. It returns nil without
// contacting anything when offline.
func (e *Engine) PushAll(ctx context.Context) error {
	endpoint := e.repos.Config.Endpoint()
	if endpoint == "" {
		metrics.RecordPush("skipped", 0, 0)
		return nil
	}

	payload := NewPushPayload(e.repos.Dataset())
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordPush("error", 0, 0)
		return &SyncError{Kind: KindMalformed, Err: err}
	}

	start := time.Now()
	if err := e.transport.Push(ctx, endpoint, body); err != nil {
		metrics.RecordPush("error", len(body), time.Since(start))
		serr := &SyncError{Kind: KindTransport, Err: err}
		e.notifyCompleted("push", nil, serr)
		return serr
	}
	metrics.RecordPush("success", len(body), time.Since(start))
	e.notifyCompleted("push", nil, nil)

	logging.Debug().
		Int("bytes", len(body)).
		Int("students", len(payload.Students)).
		Int("fees", len(payload.Fees)).
		Dur("duration", time.Since(start)).
		Msg("Pushed dataset")
	return nil
}

func (e *Engine) pushInBackground(ctx context.Context) {
	if err := e.PushAll(ctx); err != nil {
		e.failLog.Do(func() {
			logging.Warn().Err(err).Msg("Background push failed, local data is unaffected")
		})
	}
}

// PullAll replaces every collection present in the remote snapshot. The
// present collections are written in one store transaction followed by a
// single change notification; absent collections are left alone. No push
// is scheduled. On any error local state is unchanged.
func (e *Engine) PullAll(ctx context.Context) error {
	if !e.pullMu.TryLock() {
		metrics.RecordPull(string(KindInProgress), 0)
		return &SyncError{Kind: KindInProgress, Err: ErrPullInProgress}
	}
	defer e.pullMu.Unlock()

	start := time.Now()
	collections, err := e.pull(ctx)
	result := "success"
	if err != nil {
		result = string(KindOf(err))
		if result == "" {
			result = "persistence"
		}
	}
	metrics.RecordPull(result, time.Since(start))
	e.notifyCompleted("pull", collections, err)

	if err != nil {
		logging.Warn().Err(err).Str("result", result).Msg("Pull failed")
		return err
	}
	logging.Info().Strs("collections", collections).Dur("duration", time.Since(start)).Msg("Pulled remote snapshot")
	return nil
}

func (e *Engine) pull(ctx context.Context) ([]string, error) {
	endpoint := e.repos.Config.Endpoint()
	if endpoint == "" {
		return nil, &SyncError{Kind: KindNotConfigured, Err: ErrNotConfigured}
	}

	body, err := e.transport.Fetch(ctx, endpoint)
	if err != nil {
		return nil, &SyncError{Kind: KindTransport, Err: err}
	}

	slots, err := DecodePull(body)
	if err != nil {
		return nil, err
	}

	if err := e.repos.Env().ApplySnapshot(slots); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DefaultDrainTimeout bounds the push a stopping Pusher makes for a request
// still queued.
const DefaultDrainTimeout = 5 * time.Second

// Pusher returns the supervised service that drains coalesced push
// requests.
func (e *Engine) Pusher() *Pusher {
	return &Pusher{engine: e, drainTimeout: DefaultDrainTimeout}
}

// Pusher runs queued pushes one at a time, each with the latest dataset.
type Pusher struct {
	engine       *Engine
	drainTimeout time.Duration
}

// Serve implements suture.Service. When ctx ends, a request still queued
// is pushed once more within the drain timeout; requests made after that
// run on their own goroutines and are awaited by Flush.
func (p *Pusher) Serve(ctx context.Context) error {
	e := p.engine
	e.queueMu.Lock()
	e.serving.Store(true)
	e.queueMu.Unlock()

	logging.Info().Msg("Sync pusher started")
	for {
		select {
		case <-ctx.Done():
			p.drain()
			logging.Info().Msg("Sync pusher stopped")
			return ctx.Err()
		case <-e.pending:
			e.pushInBackground(ctx)
		}
	}
}

func (p *Pusher) drain() {
	e := p.engine
	e.queueMu.Lock()
	e.serving.Store(false)
	queued := false
	select {
	case <-e.pending:
		queued = true
	default:
	}
	e.queueMu.Unlock()

	if !queued {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.drainTimeout)
	defer cancel()
	logging.Info().Dur("timeout", p.drainTimeout).Msg("Pushing queued changes before stopping")
	e.pushInBackground(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (p *Pusher) String() string {
	return "sync-pusher"
}
