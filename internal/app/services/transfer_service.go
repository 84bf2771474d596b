package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/excel"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// TransferService imports and exports spreadsheets
type TransferService interface {
	ImportStudents(ctx context.Context, r io.Reader, form dto.ImportStudentsForm) (*dto.ImportStudentsResponse, error)
	ExportStudents(ctx context.Context, f models.StudentFilter) (*bytes.Buffer, error)
	// AttendanceSheet returns the workbook and its download name
	AttendanceSheet(ctx context.Context, q dto.AttendanceSheetQuery) (*bytes.Buffer, string, error)
}

type transferServiceImpl struct {
	students   StudentStore
	majors     MajorStore
	lookups    LookupStore
	subjects   SubjectStore
	attendance AttendanceStore
	now        func() time.Time
}

// NewTransferService creates a new transfer service instance
func NewTransferService(
	students StudentStore,
	majors MajorStore,
	lookups LookupStore,
	subjects SubjectStore,
	attendance AttendanceStore,
) TransferService {
	return &transferServiceImpl{
		students:   students,
		majors:     majors,
		lookups:    lookups,
		subjects:   subjects,
		attendance: attendance,
		now:        time.Now,
	}
}

// ImportStudents inserts every valid row of the workbook into the class and
// academic year, creating both when missing. All writes share one
// transaction. The major must already exist.
func (s *transferServiceImpl) ImportStudents(ctx context.Context, r io.Reader, form dto.ImportStudentsForm) (*dto.ImportStudentsResponse, error) {
	className := strings.TrimSpace(form.ClassName)
	yearName := strings.TrimSpace(form.AcademicYearName)
	majorName := strings.TrimSpace(form.MajorName)
	if className == "" || yearName == "" || majorName == "" {
		return nil, apperrors.NewValidationError("class, academic year and major are required")
	}

	major, err := s.majors.GetByName(ctx, majorName)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMajorNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrMajorNotFound, fmt.Sprintf("major '%s' not found", majorName))
		}
		return nil, err
	}

	parsed, err := excel.ParseStudents(r)
	if err != nil {
		return nil, err
	}
	if len(parsed.Records) == 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrNoValidRows, apperrors.ErrNoValidRows.Error()).
			WithDetails(map[string]interface{}{"skipped": parsed.Skipped})
	}

	inputs := make([]models.StudentInput, 0, len(parsed.Records))
	for _, rec := range parsed.Records {
		inputs = append(inputs, models.StudentInput{
			Name:         rec.Name,
			Sex:          rec.Sex,
			Score:        rec.Score,
			Email:        rec.Email,
			Phone:        rec.Phone,
			DepartmentID: &major.DepartmentID,
			MajorID:      &major.ID,
		})
	}

	inserted, err := s.students.ImportIntoGroup(ctx, className, yearName, inputs)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("class", className).Str("academicYear", yearName).Str("major", majorName).
		Int("inserted", inserted).Int("skipped", len(parsed.Skipped)).Msg("Students imported")
	skipped := parsed.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return &dto.ImportStudentsResponse{Inserted: inserted, Skipped: skipped}, nil
}

// ExportStudents writes the students matching f with the import headers
func (s *transferServiceImpl) ExportStudents(ctx context.Context, f models.StudentFilter) (*bytes.Buffer, error) {
	f.Limit, f.Offset = 0, 0
	students, err := s.students.List(ctx, f)
	if err != nil {
		return nil, err
	}

	rows := make([]excel.StudentRow, 0, len(students))
	for _, st := range students {
		rows = append(rows, excel.StudentRow{
			Name:  st.Name,
			Sex:   st.Sex,
			Score: st.Score,
			Email: helpers.DerefString(st.Email),
			Phone: helpers.DerefString(st.Phone),
		})
	}
	return excel.WriteStudents(rows)
}

func (s *transferServiceImpl) AttendanceSheet(ctx context.Context, q dto.AttendanceSheetQuery) (*bytes.Buffer, string, error) {
	class, err := s.lookups.GetByID(ctx, models.TableClass, q.ClassID)
	if err != nil {
		return nil, "", err
	}
	year, err := s.lookups.GetByID(ctx, models.TableAcademicYear, q.AcademicYearID)
	if err != nil {
		return nil, "", err
	}
	subject, err := s.subjects.GetByID(ctx, q.SubjectID)
	if err != nil {
		return nil, "", err
	}

	roster, err := s.students.Roster(ctx, q.ClassID, &q.AcademicYearID)
	if err != nil {
		return nil, "", err
	}
	if len(roster) == 0 {
		return nil, "", apperrors.ErrNoStudents
	}

	marks, err := s.attendance.Marks(ctx, q.ClassID, q.AcademicYearID, q.SubjectID)
	if err != nil {
		return nil, "", err
	}

	sheet := excel.AttendanceSheet{
		ClassName:   class.Name,
		YearName:    year.Name,
		SubjectName: subject.Name,
		GeneratedAt: s.now(),
		Statuses:    make(map[excel.Mark]string, len(marks)),
	}
	for _, r := range roster {
		sheet.Students = append(sheet.Students, excel.SheetStudent{ID: r.ID, Name: r.Name, Sex: r.Sex})
	}
	seen := make(map[string]bool)
	for _, m := range marks {
		day := m.AttendanceDate.Format(helpers.DateLayout)
		if !seen[day] {
			seen[day] = true
			sheet.Dates = append(sheet.Dates, m.AttendanceDate)
		}
		sheet.Statuses[excel.Mark{StudentID: m.StudentID, Date: day}] = m.Status
	}

	buf, err := excel.WriteAttendance(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build attendance sheet: %w", err)
	}
	return buf, sheet.Filename(), nil
}
