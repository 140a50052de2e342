// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/roster"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) maxUploadBytes() int64 {
	if h.config != nil && h.config.Server.MaxUploadBytes > 0 {
		return h.config.Server.MaxUploadBytes
	}
	return 10 << 20
}

// ImportRoster loads students from an uploaded xlsx file. The file is read
// from the multipart field "file"; any other content type is treated as the
// raw workbook bytes.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var (
		res roster.Result
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if perr := r.ParseMultipartForm(limit); perr != nil {
			h.uploadError(w, r, perr)
			return
		}
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Multipart field \"file\" is required", nil)
			return
		}
		defer file.Close()
		res, err = roster.ImportStudents(h.repos.Students, file)
	} else {
		res, err = roster.ImportStudents(h.repos.Students, r.Body)
	}

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadError(w, r, err)
			return
		}
		if errors.Is(err, roster.ErrMissingColumn) || errors.Is(err, roster.ErrNoSheets) {
			writeError(w, r, err)
			return
		}
		// excelize open errors mean the upload was not a workbook
		if res.Sheet == "" {
			respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Upload is not a readable xlsx workbook", nil)
			return
		}
		writeError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, res, res.Imported+res.Updated)
}

func (h *Handler) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, r, http.StatusRequestEntityTooLarge, "BAD_REQUEST",
			fmt.Sprintf("Upload exceeds %d bytes", h.maxUploadBytes()), nil)
		return
	}
	respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid multipart upload", nil)
}

// ExportWorkbook downloads every replicated collection as an xlsx workbook.
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := roster.WriteWorkbook(&buf, h.repos.Dataset()); err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build workbook", err)
		return
	}

	filename := fmt.Sprintf("schoolbook-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write workbook")
	}
}
