// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	// maxErrorBodySize bounds how much of a failed response is quoted in errors.
	maxErrorBodySize = 1024

	// maxPullBodySize bounds a pull response.
	maxPullBodySize = 256 << 20
)

// readBodyForError reads a bounded prefix of a response body for error messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// executeRequest performs one HTTP request and returns the body of a 2xx
// response. The caller closes the body.
func executeRequest(ctx context.Context, client *http.Client, method, reqURL, contentType string, body io.Reader) (io.ReadCloser, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(readBodyForError(resp.Body)))
	}

	return resp.Body, nil
}

// readLimited reads at most limit bytes and fails if the body is longer.
func readLimited(body io.ReadCloser, limit int64) ([]byte, error) {
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return data, nil
}
