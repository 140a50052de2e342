// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/schoolbook/internal/config"
)

// pushContentType avoids a CORS preflight on the Apps Script endpoint,
// which only answers simple requests.
const pushContentType = "text/plain;charset=utf-8"

// Transport moves sync documents to and from the remote endpoint.
type Transport interface {
	// Push delivers an encoded PushPayload.
	Push(ctx context.Context, endpoint string, body []byte) error

	// Fetch returns the raw body of a pull.
	Fetch(ctx context.Context, endpoint string) ([]byte, error)
}

// Client is the HTTP Transport.
type Client struct {
	client *http.Client
}

// NewClient creates a client using the sync timeout.
func NewClient(cfg *config.SyncConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{client: &http.Client{Timeout: timeout}}
}

// Push POSTs body to endpoint. The response body is discarded.
func (c *Client) Push(ctx context.Context, endpoint string, body []byte) error {
	resp, err := executeRequest(ctx, c.client, http.MethodPost, endpoint, pushContentType, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp, maxErrorBodySize))
	return nil
}

// Fetch GETs the remote snapshot.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := executeRequest(ctx, c.client, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return nil, err
	}
	return readLimited(resp, maxPullBodySize)
}
