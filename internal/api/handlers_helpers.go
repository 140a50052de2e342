// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/repository"
	"github.com/tomtom215/schoolbook/internal/roster"
	"github.com/tomtom215/schoolbook/internal/store"
	syncpkg "github.com/tomtom215/schoolbook/internal/sync"
	"github.com/tomtom215/schoolbook/internal/validation"
)

// maxJSONBodyBytes caps decoded request bodies.
const maxJSONBodyBytes = 8 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope. count is reported for list
// responses and omitted when negative.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}, count int) {
	meta := models.Metadata{
		Timestamp: time.Now(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if count >= 0 {
		meta.Count = count
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", sanitizeLogValue(apiErr.Code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: apiErr,
	})
}

// decodeJSON reads the request body into dst. It answers 400 itself and
// returns false when the body is missing or malformed.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil || r.Body == http.NoBody {
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Request body is required", nil)
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "BAD_REQUEST", "Request body too large", nil)
			return false
		}
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}

// writeError maps a repository, store or sync error onto the response
// envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *validation.RequestValidationError
		persistErr    *store.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		apiErr := validationErr.ToAPIError()
		respondAPIError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)

	case errors.Is(err, repository.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)

	case errors.Is(err, repository.ErrDuplicateAdmissionNo),
		errors.Is(err, repository.ErrInvalidStatusTransition),
		errors.Is(err, repository.ErrFeeImmutable):
		respondError(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)

	case errors.Is(err, repository.ErrIdentityChanged),
		errors.Is(err, roster.ErrMissingColumn),
		errors.Is(err, roster.ErrNoSheets):
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)

	case errors.As(err, &persistErr):
		if errors.Is(err, store.ErrQuotaExceeded) {
			respondError(w, r, http.StatusInsufficientStorage, "DATABASE_ERROR", "Storage quota exceeded", err)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save records", err)

	case syncpkg.KindOf(err) != "":
		writeSyncError(w, r, err)

	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

func writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	kind := syncpkg.KindOf(err)
	apiErr := &models.APIError{
		Message: err.Error(),
		Details: map[string]interface{}{"kind": string(kind)},
	}

	status := http.StatusBadGateway
	switch kind {
	case syncpkg.KindNotConfigured:
		status = http.StatusServiceUnavailable
		apiErr.Code = "SERVICE_UNAVAILABLE"
		apiErr.Message = "No remote endpoint configured"
	case syncpkg.KindInProgress:
		status = http.StatusConflict
		apiErr.Code = "CONFLICT"
	default:
		apiErr.Code = "EXTERNAL_SERVICE_FAILED"
	}
	respondAPIError(w, r, status, apiErr, nil)
}
