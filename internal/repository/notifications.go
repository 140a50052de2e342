// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/store"
)

// Notifications is the notice board, newest first.
type Notifications struct {
	*Collection[models.Notification]
}

// NewNotifications builds the notice board repository.
func NewNotifications(env *Env) *Notifications {
	return &Notifications{NewCollection[models.Notification](env, store.SlotNotifications, AppendFront)}
}

// Post fills in a missing id and date and prepends n.
func (r *Notifications) Post(n models.Notification) (models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Date == "" {
		n.Date = time.Now().UTC().Format(time.RFC3339)
	}
	if err := r.Append(n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// For returns the notices a reader with role in className should see.
func (r *Notifications) For(role models.Role, className string) []models.Notification {
	return r.Filter(func(n models.Notification) bool { return n.VisibleTo(role, className) })
}
