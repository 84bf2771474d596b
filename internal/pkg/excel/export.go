package excel

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

// StudentHeaders is the header row of a student export; it is accepted by
// ParseStudents unchanged.
var StudentHeaders = []string{"No.", "Name", "Sex", "Score", "Email", "Phone"}

// StudentRow is one line of a student export
type StudentRow struct {
	Name  string
	Sex   string
	Score float64
	Email string
	Phone string
}

// WriteStudents renders students into a single-sheet workbook.
func WriteStudents(rows []StudentRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range StudentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		values := []interface{}{i + 1, r.Name, r.Sex, r.Score, r.Email, r.Phone}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "E", "E", 30)
	_ = f.SetColWidth(sheet, "F", "F", 16)

	return f.WriteToBuffer()
}

// SheetStudent is a row of the attendance sheet
type SheetStudent struct {
	ID   int64
	Name string
	Sex  string
}

// Mark identifies one attendance cell
type Mark struct {
	StudentID int64
	Date      string // YYYY-MM-DD
}

// AttendanceSheet is the input of WriteAttendance
type AttendanceSheet struct {
	ClassName   string
	YearName    string
	SubjectName string
	GeneratedAt time.Time
	Students    []SheetStudent
	// Dates are the distinct attendance dates, ascending
	Dates    []time.Time
	Statuses map[Mark]string
}

// AttendanceSheetName is the worksheet name of the attendance export
const AttendanceSheetName = "Attendance"

// StatusLetter returns the cell value for a status; missing rows count as absent.
func StatusLetter(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return "A"
	}
	return strings.ToUpper(string([]rune(status)[0]))
}

// Title is the merged A1 heading of the sheet
func (s AttendanceSheet) Title() string {
	return fmt.Sprintf("Attendance Record for %s - %s (%s)\nDate: %s",
		s.ClassName, s.YearName, s.SubjectName, s.GeneratedAt.Format("January 02, 2006"))
}

// Filename is the suggested download name
func (s AttendanceSheet) Filename() string {
	return fmt.Sprintf("Attendance_%s_%s_%s_%s.xlsx",
		alnum(s.ClassName), alnum(s.YearName), alnum(s.SubjectName), s.GeneratedAt.Format("20060102"))
}

// WriteAttendance renders the class attendance grid: title in A1:C1, headers
// in row 2 (date headers rotated), one row per student from row 3.
func WriteAttendance(s AttendanceSheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := AttendanceSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	bottom := []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "bottom"},
		Border:    bottom,
	})
	if err != nil {
		return nil, err
	}
	rotatedStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "bottom", TextRotation: 90},
		Border:    bottom,
	})
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A1", s.Title()); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", titleStyle); err != nil {
		return nil, err
	}
	_ = f.SetRowHeight(sheet, 1, 40)

	headers := []string{"No.", "Name", "Sex"}
	for _, d := range s.Dates {
		headers = append(headers, d.Format("01/02/06"))
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
		style := headerStyle
		if i >= 3 {
			style = rotatedStyle
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return nil, err
		}
	}

	nameWidth := len("Name")
	for i, st := range s.Students {
		row := i + 3
		values := []interface{}{i + 1, st.Name, st.Sex}
		for _, d := range s.Dates {
			values = append(values, StatusLetter(s.Statuses[Mark{StudentID: st.ID, Date: d.Format("2006-01-02")}]))
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
		if n := len([]rune(st.Name)); n > nameWidth {
			nameWidth = n
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", float64(nameWidth+2))
	_ = f.SetColWidth(sheet, "C", "C", 8)
	if len(s.Dates) > 0 {
		first, _ := excelize.ColumnNumberToName(4)
		last, _ := excelize.ColumnNumberToName(3 + len(s.Dates))
		_ = f.SetColWidth(sheet, first, last, 5)
	}

	return f.WriteToBuffer()
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
