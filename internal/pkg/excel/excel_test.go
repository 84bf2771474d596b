package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestNormalizeSex(t *testing.T) {
	cases := map[string]string{
		"M": SexMale, "male": SexMale, "ប": SexMale, "ប្រុស": SexMale,
		"f": SexFemale, "FEMALE": SexFemale, "ស": SexFemale, "ស្រី": SexFemale,
	}
	for in, want := range cases {
		got, ok := NormalizeSex(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeSex("X")
	assert.False(t, ok)
}

func TestParseStudents_KhmerHeaders(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{" លរ ", "ឈ្មោះ", "ភេទ", "ពិន្ទុ", "អ៊ីមែល", "ទូរស័ព្ទ"},
		{1, "Sok Dara", "ប្រុស", 88.5, "dara@example.com", "012 345 678"},
		{2, "Chan Sreymom", "ស", "n/a", "", ""},
		{3, "", "M", 10, "", ""},
		{4, "Vannak", "X", 50, "", ""},
	})

	res, err := ParseStudents(buf)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	assert.Equal(t, "Sok Dara", res.Records[0].Name)
	assert.Equal(t, SexMale, res.Records[0].Sex)
	assert.Equal(t, 88.5, res.Records[0].Score)
	require.NotNil(t, res.Records[0].Email)
	assert.Equal(t, "dara@example.com", *res.Records[0].Email)

	assert.Equal(t, SexFemale, res.Records[1].Sex)
	assert.Equal(t, 0.0, res.Records[1].Score)
	assert.Nil(t, res.Records[1].Email)

	assert.Equal(t, []string{"Row 5: Invalid gender 'X' for student 'Vannak'"}, res.Skipped)
}

func TestParseStudents_MissingColumns(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Score"},
		{"Alice", 10},
	})
	_, err := ParseStudents(buf)
	assert.ErrorIs(t, err, apperrors.ErrMissingColumns)
}

func TestParseStudents_NotAWorkbook(t *testing.T) {
	_, err := ParseStudents(bytes.NewReader([]byte("name,sex\n")))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestStudentExportRoundTrip(t *testing.T) {
	in := []StudentRow{
		{Name: "Alice Smith", Sex: SexFemale, Score: 85.5, Email: "alice.s@example.com", Phone: "123-456-7890"},
		{Name: "Bob Johnson", Sex: SexMale, Score: 72, Email: "", Phone: ""},
	}
	buf, err := WriteStudents(in)
	require.NoError(t, err)

	res, err := ParseStudents(buf)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, "Alice Smith", res.Records[0].Name)
	assert.Equal(t, SexFemale, res.Records[0].Sex)
	assert.Equal(t, 85.5, res.Records[0].Score)
	assert.Equal(t, "alice.s@example.com", *res.Records[0].Email)
	assert.Equal(t, "123-456-7890", *res.Records[0].Phone)

	assert.Equal(t, 72.0, res.Records[1].Score)
	assert.Nil(t, res.Records[1].Email)
}

func TestStatusLetter(t *testing.T) {
	assert.Equal(t, "P", StatusLetter("Present"))
	assert.Equal(t, "L", StatusLetter("late"))
	assert.Equal(t, "E", StatusLetter("Excused"))
	assert.Equal(t, "A", StatusLetter(""))
}

func TestWriteAttendance(t *testing.T) {
	d1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	sheet := AttendanceSheet{
		ClassName:   "M1",
		YearName:    "2024-2025",
		SubjectName: "Programming",
		GeneratedAt: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Students: []SheetStudent{
			{ID: 1, Name: "Alice Smith", Sex: "Female"},
			{ID: 2, Name: "Bob Johnson", Sex: "Male"},
		},
		Dates: []time.Time{d1, d2},
		Statuses: map[Mark]string{
			{StudentID: 1, Date: "2025-03-03"}: "Present",
			{StudentID: 1, Date: "2025-03-10"}: "Late",
			{StudentID: 2, Date: "2025-03-03"}: "Excused",
		},
	}

	assert.Equal(t, "Attendance_M1_20242025_Programming_20250314.xlsx", sheet.Filename())

	buf, err := WriteAttendance(sheet)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	title, _ := f.GetCellValue(AttendanceSheetName, "A1")
	assert.Equal(t, "Attendance Record for M1 - 2024-2025 (Programming)\nDate: March 14, 2025", title)

	merged, err := f.GetMergeCells(AttendanceSheetName)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "C1", merged[0].GetEndAxis())

	rows, err := f.GetRows(AttendanceSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"No.", "Name", "Sex", "03/03/25", "03/10/25"}, rows[1])
	assert.Equal(t, []string{"1", "Alice Smith", "Female", "P", "L"}, rows[2])
	assert.Equal(t, []string{"2", "Bob Johnson", "Male", "E", "A"}, rows[3])

	styleID, err := f.GetCellStyle(AttendanceSheetName, "D2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 90, style.Alignment.TextRotation)
}
