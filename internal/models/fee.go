// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package models

import (
	"math"

	"github.com/tomtom215/schoolbook/internal/validation"
)

// FeeStatus is the verification state of a fee payment.
type FeeStatus string

const (
	FeePending  FeeStatus = "Pending"
	FeeVerified FeeStatus = "Verified"
	FeeRejected FeeStatus = "Rejected"
)

// CanTransition reports whether a transaction in status s may move to next.
// The only allowed moves are Pending to Verified and Pending to Rejected.
func (s FeeStatus) CanTransition(next FeeStatus) bool {
	return s == FeePending && (next == FeeVerified || next == FeeRejected)
}

// FeeTransaction is one payment entry in the fee ledger.
type FeeTransaction struct {
	ID          string    `json:"id" validate:"notblank"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	ClassName   string    `json:"className"`
	FeeType     string    `json:"feeType"`
	Month       string    `json:"month"`
	BaseAmount  float64   `json:"baseAmount" validate:"gte=0"`
	FineAmount  float64   `json:"fineAmount" validate:"gte=0"`
	TotalAmount float64   `json:"totalAmount" validate:"gte=0"`
	Date        string    `json:"date" validate:"isodate"`
	Mode        string    `json:"mode"`
	Status      FeeStatus `json:"status" validate:"omitempty,oneof=Pending Verified Rejected"`
	ReceiptNo   string    `json:"receiptNo"`
	Proof       string    `json:"proof,omitempty"`
	Remarks     string    `json:"remarks"`
}

// RecordID implements Record.
func (f FeeTransaction) RecordID() string { return f.ID }

// ComputeTotal sets TotalAmount from its components.
func (f *FeeTransaction) ComputeTotal() {
	f.TotalAmount = f.BaseAmount + f.FineAmount
}

// Validate implements Record. When either component amount is set the total
// must equal their sum to the cent; ledger rows that only carry a total are
// accepted as-is.
func (f FeeTransaction) Validate() error {
	if err := check(f); err != nil {
		return err
	}
	if f.BaseAmount == 0 && f.FineAmount == 0 {
		return nil
	}
	if math.Abs(f.TotalAmount-(f.BaseAmount+f.FineAmount)) >= 0.005 {
		return validation.NewFieldError("totalAmount", "sum", "totalAmount must equal baseAmount + fineAmount")
	}
	return nil
}
