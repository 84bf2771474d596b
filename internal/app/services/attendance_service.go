package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// AttendanceService records and reports attendance
type AttendanceService interface {
	Record(ctx context.Context, req dto.RecordAttendanceRequest) error
	Roster(ctx context.Context, classID int64, academicYearID *int64) ([]models.RosterEntry, error)
	SaveBatch(ctx context.Context, req dto.BatchAttendanceRequest) (int, error)
	Report(ctx context.Context, q dto.AttendanceReportQuery) (*dto.AttendanceReportResponse, error)
	DailyLog(ctx context.Context, q dto.DailyLogQuery) ([]models.DailyLogRow, error)
	// SweepAbsences marks Absent every student without a row for the
	// class/subject pairs scheduled on date's weekday.
	SweepAbsences(ctx context.Context, date time.Time) (int64, error)
}

type attendanceServiceImpl struct {
	attendance AttendanceStore
	students   StudentStore
	schedules  ScheduleStore
	lookups    LookupStore
	subjects   SubjectStore
}

// NewAttendanceService creates a new attendance service instance
func NewAttendanceService(
	attendance AttendanceStore,
	students StudentStore,
	schedules ScheduleStore,
	lookups LookupStore,
	subjects SubjectStore,
) AttendanceService {
	return &attendanceServiceImpl{
		attendance: attendance,
		students:   students,
		schedules:  schedules,
		lookups:    lookups,
		subjects:   subjects,
	}
}

func parseStatus(s string) (models.AttendanceStatus, error) {
	status, ok := models.ParseAttendanceStatus(s)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid status '%s', use Present, Absent, Late or Excused", s))
	}
	return status, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := helpers.ParseDate(s)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(err.Error())
	}
	return d, nil
}

// requireScheduled fails unless the subject is taught to the class on some day
func (s *attendanceServiceImpl) requireScheduled(ctx context.Context, classID, subjectID int64) error {
	ok, err := s.schedules.IsScheduled(ctx, classID, subjectID, "")
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrSubjectNotScheduled
	}
	return nil
}

// Record upserts the status of one student for a subject and date
func (s *attendanceServiceImpl) Record(ctx context.Context, req dto.RecordAttendanceRequest) error {
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return err
	}

	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if student.ClassID == nil {
		return apperrors.ErrStudentHasNoClass
	}
	if err := s.requireScheduled(ctx, *student.ClassID, req.SubjectID); err != nil {
		return err
	}

	return s.attendance.Upsert(ctx, models.Attendance{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		AttendanceDate: date,
		Status:         status,
		Notes:          helpers.NullableString(req.Notes),
	})
}

func (s *attendanceServiceImpl) Roster(ctx context.Context, classID int64, academicYearID *int64) ([]models.RosterEntry, error) {
	if _, err := s.lookups.GetByID(ctx, models.TableClass, classID); err != nil {
		return nil, err
	}
	return s.students.Roster(ctx, classID, academicYearID)
}

// SaveBatch upserts the statuses of several students of one class
func (s *attendanceServiceImpl) SaveBatch(ctx context.Context, req dto.BatchAttendanceRequest) (int, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return 0, err
	}
	if err := s.requireScheduled(ctx, req.ClassID, req.SubjectID); err != nil {
		return 0, err
	}

	roster, err := s.students.Roster(ctx, req.ClassID, nil)
	if err != nil {
		return 0, err
	}
	members := make(map[int64]bool, len(roster))
	for _, r := range roster {
		members[r.ID] = true
	}

	rows := make([]models.Attendance, 0, len(req.Records))
	for _, item := range req.Records {
		if !members[item.StudentID] {
			return 0, apperrors.NewValidationError(fmt.Sprintf("student %d is not in class %d", item.StudentID, req.ClassID))
		}
		status, err := parseStatus(item.Status)
		if err != nil {
			return 0, err
		}
		rows = append(rows, models.Attendance{
			StudentID:      item.StudentID,
			SubjectID:      req.SubjectID,
			AttendanceDate: date,
			Status:         status,
			Notes:          helpers.NullableString(item.Notes),
		})
	}

	saved, err := s.attendance.UpsertMany(ctx, rows)
	if err != nil {
		return 0, err
	}
	logger.Info().Int64("classId", req.ClassID).Int64("subjectId", req.SubjectID).
		Str("date", req.Date).Int("saved", saved).Msg("Attendance batch saved")
	return saved, nil
}

func (s *attendanceServiceImpl) Report(ctx context.Context, q dto.AttendanceReportQuery) (*dto.AttendanceReportResponse, error) {
	from, err := parseDate(q.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(q.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperrors.NewValidationError("end date must not be before start date")
	}
	if _, err := s.lookups.GetByID(ctx, models.TableClass, q.ClassID); err != nil {
		return nil, err
	}
	if _, err := s.subjects.GetByID(ctx, q.SubjectID); err != nil {
		return nil, err
	}

	rows, err := s.attendance.Report(ctx, q.ClassID, q.SubjectID, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.AttendanceReportResponse{
		ClassID:   q.ClassID,
		SubjectID: q.SubjectID,
		From:      from.Format(helpers.DateLayout),
		To:        to.Format(helpers.DateLayout),
		Rows:      rows,
	}, nil
}

func (s *attendanceServiceImpl) DailyLog(ctx context.Context, q dto.DailyLogQuery) ([]models.DailyLogRow, error) {
	date, err := parseDate(q.Date)
	if err != nil {
		return nil, err
	}
	year := q.AcademicYearID
	return s.attendance.DailyLog(ctx, date, q.ClassID, &year, q.SubjectID)
}

func (s *attendanceServiceImpl) SweepAbsences(ctx context.Context, date time.Time) (int64, error) {
	day := date.Weekday().String()
	pairs, err := s.schedules.ScheduledOn(ctx, day)
	if err != nil {
		return 0, err
	}

	var total int64
	var errs []error
	for _, p := range pairs {
		n, err := s.attendance.SweepAbsent(ctx, p.ClassID, p.SubjectID, date)
		if err != nil {
			logger.Error().Err(err).Int64("classId", p.ClassID).Int64("subjectId", p.SubjectID).Msg("Absence sweep failed")
			errs = append(errs, err)
			continue
		}
		total += n
	}

	logger.Info().Str("day", day).Int("pairs", len(pairs)).Int64("marked", total).Msg("Absence sweep finished")
	return total, errors.Join(errs...)
}
