// Package export builds XLSX workbooks for attendance reports and the
// student registry.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/campusware/rollcall/internal/domain"
)

// statusCell encodes Present as 1 and anything else as 0, the format
// faculty spreadsheets aggregate with a SUM column.
func statusCell(s domain.AttendanceStatus) int {
	if s == domain.StatusPresent {
		return 1
	}
	return 0
}

// Attendance renders one session's records into a workbook and returns
// the serialized bytes plus a suggested filename.
func Attendance(sess *domain.Session, records []domain.AttendanceRecord) ([]byte, string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Name", "Roll No", "Lecture ID", "Date", "Time", "Subject", "Status"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		row := []any{
			rec.Name,
			rec.RollNo,
			rec.SessionID,
			sess.Date,
			sess.StartTime,
			sess.Name,
			statusCell(rec.Status),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("serialize workbook: %w", err)
	}

	name := fmt.Sprintf("attendance_%s.xlsx", sess.ID)
	return buf.Bytes(), name, nil
}

// Students renders the registry into a workbook.
func Students(students []domain.Student) ([]byte, string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Students"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{"Roll No", "Name", "Email"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("write header: %w", err)
	}

	for i, st := range students {
		row := []any{st.RollNo, st.Name, st.Email}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("serialize workbook: %w", err)
	}

	return buf.Bytes(), "students.xlsx", nil
}
