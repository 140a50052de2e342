// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/models"
	"github.com/tomtom215/schoolbook/internal/repository"
)

var (
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook contains no sheets")

	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("required column missing")
)

// RowError describes a skipped spreadsheet row. Row is 1-based as shown
// by spreadsheet programs.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes an import.
type Result struct {
	Sheet    string     `json:"sheet"`
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Skipped  []RowError `json:"skipped,omitempty"`
}

// column binds a normalized header to a Student field.
type column struct {
	set func(s *models.Student, v string)
}

// headerAliases maps normalized header text to a column. Headers are
// compared lowercase with spaces, dots, dashes and underscores removed.
var headerAliases = map[string]column{
	"admissionno":    {func(s *models.Student, v string) { s.AdmissionNo = v }},
	"admissionnum":   {func(s *models.Student, v string) { s.AdmissionNo = v }},
	"admno":          {func(s *models.Student, v string) { s.AdmissionNo = v }},
	"firstname":      {func(s *models.Student, v string) { s.FirstName = v }},
	"lastname":       {func(s *models.Student, v string) { s.LastName = v }},
	"surname":        {func(s *models.Student, v string) { s.LastName = v }},
	"dob":            {func(s *models.Student, v string) { s.DOB = normalizeDate(v) }},
	"dateofbirth":    {func(s *models.Student, v string) { s.DOB = normalizeDate(v) }},
	"gender":         {func(s *models.Student, v string) { s.Gender = v }},
	"class":          {func(s *models.Student, v string) { s.ClassName = v }},
	"classname":      {func(s *models.Student, v string) { s.ClassName = v }},
	"section":        {func(s *models.Student, v string) { s.Section = v }},
	"rollno":         {func(s *models.Student, v string) { s.RollNo = v }},
	"guardianname":   {func(s *models.Student, v string) { s.GuardianName = v }},
	"guardian":       {func(s *models.Student, v string) { s.GuardianName = v }},
	"guardianphone":  {func(s *models.Student, v string) { s.GuardianPhone = v }},
	"phone":          {func(s *models.Student, v string) { s.GuardianPhone = v }},
	"guardianemail":  {func(s *models.Student, v string) { s.GuardianEmail = v }},
	"email":          {func(s *models.Student, v string) { s.GuardianEmail = v }},
	"address":        {func(s *models.Student, v string) { s.Address = v }},
	"admissiondate":  {func(s *models.Student, v string) { s.AdmissionDate = normalizeDate(v) }},
	"bloodgroup":     {func(s *models.Student, v string) { s.BloodGroup = v }},
	"previousschool": {func(s *models.Student, v string) { s.PreviousSchool = v }},
	"status": {func(s *models.Student, v string) {
		if v != "" {
			s.Status = models.StudentStatus(v)
		}
	}},
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", ".", "", "-", "", "_", "").Replace(h)
}

// dateLayouts are tried in order for date cells typed by hand.
var dateLayouts = []string{"2006-01-02", "2/1/2006", "2-1-2006", "2006/01/02"}

// normalizeDate converts common spreadsheet date renderings to
// YYYY-MM-DD. Unrecognized values are returned unchanged so validation
// reports them.
func normalizeDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}

// parsedRow is one accepted roster row. hasStatus is set when the row
// carried its own status cell rather than the Active default.
type parsedRow struct {
	student   models.Student
	hasStatus bool
}

// ParseStudents reads the first worksheet of an xlsx roster. The first row
// is the header; "Admission No" and "First Name" columns are required.
// Rows without a status are Active. Rows that are blank, invalid or repeat
// an admission number already seen in the file are reported in the returned
// row errors and left out.
func ParseStudents(r io.Reader) (string, []models.Student, []RowError, error) {
	sheet, rows, skipped, err := parseRoster(r)
	students := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student)
	}
	return sheet, students, skipped, err
}

func parseRoster(r io.Reader) (string, []parsedRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close roster workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return "", nil, nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return sheet, nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return sheet, nil, nil, fmt.Errorf("%w: sheet %s is empty", ErrMissingColumn, sheet)
	}

	cols := make(map[int]column, len(rows[0]))
	found := make(map[string]bool)
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if c, ok := headerAliases[key]; ok {
			cols[i] = c
			found[key] = true
		}
	}
	if !found["admissionno"] && !found["admissionnum"] && !found["admno"] {
		return sheet, nil, nil, fmt.Errorf("%w: Admission No", ErrMissingColumn)
	}
	if !found["firstname"] {
		return sheet, nil, nil, fmt.Errorf("%w: First Name", ErrMissingColumn)
	}

	var (
		parsed  []parsedRow
		skipped []RowError
		seen    = make(map[string]int)
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}

		var s models.Student
		for idx, cell := range row {
			if c, ok := cols[idx]; ok {
				c.set(&s, strings.TrimSpace(cell))
			}
		}
		hasStatus := s.Status != ""
		if !hasStatus {
			s.Status = models.StudentActive
		}

		if s.AdmissionNo == "" {
			skipped = append(skipped, RowError{Row: rowNum, Reason: "admission number is empty"})
			continue
		}
		if first, dup := seen[s.AdmissionNo]; dup {
			skipped = append(skipped, RowError{Row: rowNum, Reason: fmt.Sprintf("admission number %s repeats row %d", s.AdmissionNo, first)})
			continue
		}
		// identity is assigned on import; validate with a placeholder
		candidate := s
		candidate.ID = "pending"
		if err := candidate.Validate(); err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		seen[s.AdmissionNo] = rowNum
		parsed = append(parsed, parsedRow{student: s, hasStatus: hasStatus})
	}
	return sheet, parsed, skipped, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportStudents parses a roster and saves it in a single upsert, so the
// whole import produces one change notification and one push. A row whose
// admission number already exists updates that student in place and keeps
// its id; other rows become new students with generated ids.
func ImportStudents(repo *repository.Students, r io.Reader) (Result, error) {
	sheet, rows, skipped, err := parseRoster(r)
	if err != nil {
		return Result{Sheet: sheet}, err
	}

	res := Result{Sheet: sheet, Skipped: skipped}
	parsed := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		s := row.student
		if existing, ok := repo.ByAdmissionNo(s.AdmissionNo); ok {
			parsed = append(parsed, mergeExisting(existing, row))
			res.Updated++
			continue
		}
		s.ID = uuid.New().String()
		parsed = append(parsed, s)
		res.Imported++
	}

	if len(parsed) == 0 {
		return res, nil
	}
	if err := repo.Save(parsed...); err != nil {
		return Result{Sheet: sheet}, err
	}

	logging.Info().
		Str("sheet", sheet).
		Int("imported", res.Imported).
		Int("updated", res.Updated).
		Int("skipped", len(res.Skipped)).
		Msg("Roster imported")
	return res, nil
}

// mergeExisting overlays the non-empty roster fields onto the stored
// student, keeping fields the roster does not carry. The status changes
// only when the row gave one.
func mergeExisting(cur models.Student, row parsedRow) models.Student {
	in := row.student
	out := cur
	if row.hasStatus {
		out.Status = in.Status
	}
	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&out.FirstName, in.FirstName)
	overlay(&out.LastName, in.LastName)
	overlay(&out.DOB, in.DOB)
	overlay(&out.Gender, in.Gender)
	overlay(&out.ClassName, in.ClassName)
	overlay(&out.Section, in.Section)
	overlay(&out.RollNo, in.RollNo)
	overlay(&out.GuardianName, in.GuardianName)
	overlay(&out.GuardianPhone, in.GuardianPhone)
	overlay(&out.GuardianEmail, in.GuardianEmail)
	overlay(&out.Address, in.Address)
	overlay(&out.AdmissionDate, in.AdmissionDate)
	overlay(&out.BloodGroup, in.BloodGroup)
	overlay(&out.PreviousSchool, in.PreviousSchool)
	return out
}
