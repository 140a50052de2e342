// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

// Package repository holds one repository per record collection. The
// repositories are the only code that mutates the store.
//
// Every mutation follows the same cycle:
//
//  1. validate the incoming records (nothing is written on failure)
//  2. take the store-wide mutation lock
//  3. read the whole collection, apply the merge rule, write it back
//  4. release the lock, publish on the change bus, schedule a push
//
// A *store.PersistenceError from step 3 is returned to the caller and
// step 4 is skipped. Push failures never reach the caller.
//
// The merge rule of a collection is its Strategy, fixed at construction.
package repository

import (
	"fmt"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/metrics"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Strategy is the declared merge rule of a collection.
type Strategy int

const (
	// UpsertByKey replaces the first record with the same identity in place,
	// or appends when there is none.
	UpsertByKey Strategy = iota + 1

	// AppendFront prepends new records without any identity check.
	AppendFront

	// AppendBatch concatenates whole batches to the end without dedup.
	AppendBatch

	// ReplaceAll overwrites the collection as one unit.
	ReplaceAll
)

func (s Strategy) String() string {
	switch s {
	case UpsertByKey:
		return "upsert_by_key"
	case AppendFront:
		return "append_front"
	case AppendBatch:
		return "append_batch"
	case ReplaceAll:
		return "replace_all"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Guard checks incoming records against the current collection inside the
// mutation lock. current is nil for ReplaceAll.
type Guard[T models.Record] func(current, incoming []T) error

// Option configures a Collection.
type Option[T models.Record] func(*Collection[T])

// WithGuard installs a consistency check run before every write.
func WithGuard[T models.Record](g Guard[T]) Option[T] {
	return func(c *Collection[T]) { c.guard = g }
}

// WithPrepare installs a normalization applied to incoming records before
// validation.
func WithPrepare[T models.Record](fn func(T) T) Option[T] {
	return func(c *Collection[T]) { c.prepare = fn }
}

// LocalOnly marks a collection whose changes are never pushed.
func LocalOnly[T models.Record]() Option[T] {
	return func(c *Collection[T]) { c.push = false }
}

// Collection is a repository over one slot of records of type T.
type Collection[T models.Record] struct {
	env      *Env
	slot     string
	strategy Strategy
	guard    Guard[T]
	prepare  func(T) T
	push     bool
}

// NewCollection builds a repository for slot using strategy.
func NewCollection[T models.Record](env *Env, slot string, strategy Strategy, opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{env: env, slot: slot, strategy: strategy, push: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Slot returns the store slot name.
func (c *Collection[T]) Slot() string { return c.slot }

// Strategy returns the declared merge rule.
func (c *Collection[T]) Strategy() Strategy { return c.strategy }

// GetAll returns the whole collection in stored order. It never fails.
func (c *Collection[T]) GetAll() []T {
	return store.ReadCollection[T](c.env.store, c.slot)
}

// Find returns the first record with identity id.
func (c *Collection[T]) Find(id string) (T, bool) {
	for _, rec := range c.GetAll() {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the records for which keep reports true, in stored order.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := []T{}
	for _, rec := range c.GetAll() {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// UpsertByID replaces the first record with the same identity in place, or
// appends rec when none exists.
func (c *Collection[T]) UpsertByID(rec T) error {
	return c.mutate("upsert", []T{rec}, func(cur, in []T) ([]T, bool, error) {
		return upsert(cur, in), true, nil
	})
}

// Append prepends rec so the newest record is at index 0.
func (c *Collection[T]) Append(rec T) error {
	return c.mutate("append", []T{rec}, func(cur, in []T) ([]T, bool, error) {
		return prepend(cur, in), true, nil
	})
}

// AppendBatch adds recs to the end of the collection as submitted. Records
// already present are not deduplicated.
func (c *Collection[T]) AppendBatch(recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	return c.mutate("append_batch", recs, func(cur, in []T) ([]T, bool, error) {
		next := make([]T, 0, len(cur)+len(in))
		next = append(next, cur...)
		next = append(next, in...)
		return next, true, nil
	})
}

// DeleteByID removes every record with identity id. When nothing matches the
// call is a no-op: nothing is written, published or pushed.
func (c *Collection[T]) DeleteByID(id string) error {
	return c.mutate("delete", nil, func(cur, _ []T) ([]T, bool, error) {
		next := make([]T, 0, len(cur))
		for _, rec := range cur {
			if rec.RecordID() != id {
				next = append(next, rec)
			}
		}
		return next, len(next) != len(cur), nil
	})
}

// ReplaceAll overwrites the collection with recs, keeping their order.
func (c *Collection[T]) ReplaceAll(recs []T) error {
	return c.mutate("replace_all", recs, func(_, in []T) ([]T, bool, error) {
		next := make([]T, len(in))
		copy(next, in)
		return next, true, nil
	})
}

// Update applies fn to the first record with identity id and upserts the
// result. fn runs under the mutation lock.
func (c *Collection[T]) Update(id string, fn func(T) (T, error)) error {
	return c.mutate("update", nil, func(cur, _ []T) ([]T, bool, error) {
		for i, rec := range cur {
			if rec.RecordID() != id {
				continue
			}
			updated, err := fn(rec)
			if err != nil {
				return nil, false, err
			}
			if c.prepare != nil {
				updated = c.prepare(updated)
			}
			if err := updated.Validate(); err != nil {
				return nil, false, err
			}
			if updated.RecordID() != id {
				return nil, false, fmt.Errorf("%w: %s became %s", ErrIdentityChanged, id, updated.RecordID())
			}
			next := make([]T, len(cur))
			copy(next, cur)
			next[i] = updated
			return next, true, nil
		}
		return nil, false, fmt.Errorf("%s %s: %w", c.slot, id, ErrNotFound)
	})
}

// Save applies the collection's declared strategy to recs.
func (c *Collection[T]) Save(recs ...T) error {
	switch c.strategy {
	case UpsertByKey:
		return c.mutate("save", recs, func(cur, in []T) ([]T, bool, error) {
			return upsert(cur, in), len(in) > 0, nil
		})
	case AppendFront:
		return c.mutate("save", recs, func(cur, in []T) ([]T, bool, error) {
			return prepend(cur, in), len(in) > 0, nil
		})
	case AppendBatch:
		return c.AppendBatch(recs)
	case ReplaceAll:
		return c.ReplaceAll(recs)
	default:
		return fmt.Errorf("collection %s has no merge strategy", c.slot)
	}
}

// mutate runs one validate, lock, read, merge, write, notify cycle.
// apply reports whether anything changed; an unchanged result skips the
// write and every side effect.
func (c *Collection[T]) mutate(op string, incoming []T, apply func(cur, in []T) ([]T, bool, error)) error {
	in := make([]T, len(incoming))
	for i, rec := range incoming {
		if c.prepare != nil {
			rec = c.prepare(rec)
		}
		if err := rec.Validate(); err != nil {
			metrics.RecordMutation(c.slot, op, "invalid", 0)
			return err
		}
		in[i] = rec
	}

	c.env.mu.Lock()
	var cur []T
	if op != "replace_all" {
		cur = store.ReadCollection[T](c.env.store, c.slot)
	}
	if c.guard != nil && len(in) > 0 {
		if err := c.guard(cur, in); err != nil {
			c.env.mu.Unlock()
			metrics.RecordMutation(c.slot, op, "rejected", 0)
			return err
		}
	}
	next, changed, err := apply(cur, in)
	if err != nil {
		c.env.mu.Unlock()
		metrics.RecordMutation(c.slot, op, "rejected", 0)
		return err
	}
	if !changed {
		c.env.mu.Unlock()
		metrics.RecordMutation(c.slot, op, "noop", 0)
		return nil
	}
	if err := store.WriteCollection(c.env.store, c.slot, next); err != nil {
		c.env.mu.Unlock()
		metrics.RecordMutation(c.slot, op, "error", 0)
		logging.Error().Err(err).Str("collection", c.slot).Str("op", op).Msg("Collection write failed")
		return err
	}
	c.env.mu.Unlock()

	metrics.RecordMutation(c.slot, op, "success", len(next))
	logging.Debug().Str("collection", c.slot).Str("op", op).Int("records", len(next)).Msg("Collection updated")

	c.env.changed(c.push)
	return nil
}

// upsert merges in into cur by identity. The first stored match wins; later
// duplicates already in storage are left alone.
func upsert[T models.Record](cur, in []T) []T {
	next := make([]T, len(cur), len(cur)+len(in))
	copy(next, cur)
	for _, rec := range in {
		id := rec.RecordID()
		replaced := false
		for i := range next {
			if next[i].RecordID() == id {
				next[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			next = append(next, rec)
		}
	}
	return next
}

// prepend puts each record of in at index 0 in turn, so the last one ends
// up first.
func prepend[T models.Record](cur, in []T) []T {
	next := make([]T, 0, len(cur)+len(in))
	for i := len(in) - 1; i >= 0; i-- {
		next = append(next, in[i])
	}
	return append(next, cur...)
}
