// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Fees is the append-only fee ledger. New transactions go to the front.
// A recorded transaction may only change its status, once, from Pending.
type Fees struct {
	*Collection[models.FeeTransaction]
}

// NewFees builds the fee ledger repository.
func NewFees(env *Env) *Fees {
	return &Fees{NewCollection[models.FeeTransaction](env, store.SlotFees, AppendFront)}
}

func effectiveStatus(s models.FeeStatus) models.FeeStatus {
	if s == "" {
		return models.FeePending
	}
	return s
}

// checkFeeChange allows old to become next only through a status transition.
func checkFeeChange(old, next models.FeeTransaction) error {
	from, to := effectiveStatus(old.Status), effectiveStatus(next.Status)
	old.Status, next.Status = "", ""
	if old != next {
		return fmt.Errorf("fee %s: %w", old.ID, ErrFeeImmutable)
	}
	if from != to && !from.CanTransition(to) {
		return fmt.Errorf("fee %s %s -> %s: %w", old.ID, from, to, ErrInvalidStatusTransition)
	}
	return nil
}

// UpsertByID updates an existing transaction, which may only change its
// status, or prepends tx when its id is new.
func (r *Fees) UpsertByID(tx models.FeeTransaction) error {
	if _, exists := r.Find(tx.ID); !exists {
		return r.Append(tx)
	}
	return r.Update(tx.ID, func(old models.FeeTransaction) (models.FeeTransaction, error) {
		if err := checkFeeChange(old, tx); err != nil {
			return old, err
		}
		return tx, nil
	})
}

// Record fills in defaults for a new payment and prepends it. A missing id
// gets a UUID, the total is computed from its components, the date defaults
// to today and the status to Pending.
func (r *Fees) Record(tx models.FeeTransaction) (models.FeeTransaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.BaseAmount != 0 || tx.FineAmount != 0 {
		tx.ComputeTotal()
	}
	if tx.Date == "" {
		tx.Date = time.Now().Format("2006-01-02")
	}
	if tx.Status == "" {
		tx.Status = models.FeePending
	}
	if err := r.Append(tx); err != nil {
		return models.FeeTransaction{}, err
	}
	return tx, nil
}

// SetStatus moves transaction id to status. Only Pending to Verified or
// Rejected is allowed.
func (r *Fees) SetStatus(id string, status models.FeeStatus) error {
	return r.Update(id, func(tx models.FeeTransaction) (models.FeeTransaction, error) {
		from := effectiveStatus(tx.Status)
		if !from.CanTransition(status) {
			return tx, fmt.Errorf("fee %s %s -> %s: %w", id, from, status, ErrInvalidStatusTransition)
		}
		tx.Status = status
		return tx, nil
	})
}

// ForStudent returns the ledger entries of one student, newest first.
func (r *Fees) ForStudent(studentID string) []models.FeeTransaction {
	return r.Filter(func(tx models.FeeTransaction) bool { return tx.StudentID == studentID })
}

// Pending returns transactions awaiting verification.
func (r *Fees) Pending() []models.FeeTransaction {
	return r.Filter(func(tx models.FeeTransaction) bool {
		return effectiveStatus(tx.Status) == models.FeePending
	})
}

// Collected sums verified payments per student.
func (r *Fees) Collected() map[string]float64 {
	out := make(map[string]float64)
	for _, tx := range r.GetAll() {
		if tx.Status == models.FeeVerified {
			out[tx.StudentID] += tx.TotalAmount
		}
	}
	return out
}
