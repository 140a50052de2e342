// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

package roster

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/repository"
)

// Sheet names written by WriteWorkbook, in order.
const (
	SheetStudents      = "Students"
	SheetStaff         = "Staff"
	SheetFees          = "Fees"
	SheetAttendance    = "Attendance"
	SheetMarks         = "Marks"
	SheetNotifications = "Notifications"
)

// StudentHeader is the header row of the Students sheet. ParseStudents
// accepts it, so an exported workbook can be imported again.
var StudentHeader = []string{
	"Admission No", "First Name", "Last Name", "DOB", "Gender", "Class", "Section",
	"Roll No", "Guardian Name", "Guardian Phone", "Guardian Email", "Address",
	"Status", "Admission Date", "Blood Group", "Previous School", "ID",
}

type sheet struct {
	name   string
	header []string
	rows   [][]interface{}
}

func datasetSheets(ds repository.Dataset) []sheet {
	students := sheet{name: SheetStudents, header: StudentHeader}
	for _, s := range ds.Students {
		students.rows = append(students.rows, []interface{}{
			s.AdmissionNo, s.FirstName, s.LastName, s.DOB, s.Gender, s.ClassName, s.Section,
			s.RollNo, s.GuardianName, s.GuardianPhone, s.GuardianEmail, s.Address,
			string(s.Status), s.AdmissionDate, s.BloodGroup, s.PreviousSchool, s.ID,
		})
	}

	staff := sheet{name: SheetStaff, header: []string{
		"ID", "Name", "Role", "Email", "Phone", "Subject", "Salary", "Assigned Class", "Joining Date", "Status",
	}}
	for _, s := range ds.Staff {
		staff.rows = append(staff.rows, []interface{}{
			s.ID, s.Name, string(s.Role), s.Email, s.Phone, s.Subject, s.Salary, s.AssignedClass, s.JoiningDate, s.Status,
		})
	}

	fees := sheet{name: SheetFees, header: []string{
		"ID", "Receipt No", "Student ID", "Student", "Class", "Fee Type", "Month",
		"Base", "Fine", "Total", "Date", "Mode", "Status", "Remarks",
	}}
	for _, f := range ds.Fees {
		fees.rows = append(fees.rows, []interface{}{
			f.ID, f.ReceiptNo, f.StudentID, f.StudentName, f.ClassName, f.FeeType, f.Month,
			f.BaseAmount, f.FineAmount, f.TotalAmount, f.Date, f.Mode, string(f.Status), f.Remarks,
		})
	}

	attendance := sheet{name: SheetAttendance, header: []string{
		"Date", "Student ID", "Student", "Class", "Status", "Marked By",
	}}
	for _, a := range ds.Attendance {
		attendance.rows = append(attendance.rows, []interface{}{
			a.Date, a.StudentID, a.StudentName, a.ClassName, string(a.Status), a.MarkedBy,
		})
	}

	marks := sheet{name: SheetMarks, header: []string{
		"ID", "Student ID", "Exam", "Subject", "Marks", "Max Marks", "Class", "Remarks",
	}}
	for _, m := range ds.Marks {
		marks.rows = append(marks.rows, []interface{}{
			m.ID, m.StudentID, m.ExamName, m.Subject, m.MarksObtained, m.MaxMarks, m.ClassName, m.Remarks,
		})
	}

	notifications := sheet{name: SheetNotifications, header: []string{
		"ID", "Title", "Message", "To", "Date", "Sender", "Type",
	}}
	for _, n := range ds.Notifications {
		notifications.rows = append(notifications.rows, []interface{}{
			n.ID, n.Title, n.Message, n.To, n.Date, n.Sender, n.Type,
		})
	}

	return []sheet{students, staff, fees, attendance, marks, notifications}
}

// WriteWorkbook renders ds as an xlsx workbook with one sheet per
// replicated collection and a bold header row on each.
func WriteWorkbook(w io.Writer, ds repository.Dataset) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close export workbook")
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, sh := range datasetSheets(ds) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sh.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sh.name, err)
		}

		if err := writeSheet(f, sh, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh sheet, headerStyle int) error {
	header := make([]interface{}, len(sh.header))
	for i, h := range sh.header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sh.name, err)
	}
	if err := f.SetRowStyle(sh.name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sh.name, err)
	}

	for i, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sh.name, i+2, err)
		}
	}
	return nil
}
