package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// NoAcademicYear selects schedule entries without an academic year
const NoAcademicYear = "N/A"

// ScheduleService manages the weekly class schedule
type ScheduleService interface {
	Search(ctx context.Context, q dto.ScheduleSearchQuery) ([]models.Schedule, error)
	Get(ctx context.Context, id int64) (*models.Schedule, error)
	Create(ctx context.Context, req dto.ScheduleRequest) (int64, error)
	Update(ctx context.Context, id int64, req dto.ScheduleRequest) error
	Delete(ctx context.Context, id int64) error
}

type scheduleServiceImpl struct {
	schedules ScheduleStore
	lookups   LookupStore
	subjects  SubjectStore
}

// NewScheduleService creates a new schedule service instance
func NewScheduleService(schedules ScheduleStore, lookups LookupStore, subjects SubjectStore) ScheduleService {
	return &scheduleServiceImpl{schedules: schedules, lookups: lookups, subjects: subjects}
}

// ScheduleFilterFromQuery converts search parameters into a filter
func ScheduleFilterFromQuery(q dto.ScheduleSearchQuery) (models.ScheduleFilter, error) {
	f := models.ScheduleFilter{
		ClassName: strings.TrimSpace(q.ClassName),
		SubjectID: q.SubjectID,
	}

	if q.DayOfWeek != "" {
		day, ok := helpers.NormalizeWeekday(q.DayOfWeek)
		if !ok {
			return f, apperrors.NewValidationError(fmt.Sprintf("invalid day of week '%s'", q.DayOfWeek))
		}
		f.DayOfWeek = day
	}

	switch year := strings.TrimSpace(q.AcademicYear); {
	case year == "":
	case strings.EqualFold(year, NoAcademicYear):
		f.NoAcademicYear = true
	default:
		id, err := strconv.ParseInt(year, 10, 64)
		if err != nil || id <= 0 {
			return f, apperrors.NewValidationError(fmt.Sprintf("academic year must be an id or %s", NoAcademicYear))
		}
		f.AcademicYearID = &id
	}
	return f, nil
}

func (s *scheduleServiceImpl) Search(ctx context.Context, q dto.ScheduleSearchQuery) ([]models.Schedule, error) {
	f, err := ScheduleFilterFromQuery(q)
	if err != nil {
		return nil, err
	}
	return s.schedules.Search(ctx, f)
}

func (s *scheduleServiceImpl) Get(ctx context.Context, id int64) (*models.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

// validate normalizes the request and checks that every reference exists
func (s *scheduleServiceImpl) validate(ctx context.Context, req dto.ScheduleRequest) (models.ScheduleInput, error) {
	day, ok := helpers.NormalizeWeekday(req.DayOfWeek)
	if !ok {
		return models.ScheduleInput{}, apperrors.NewValidationError(fmt.Sprintf("invalid day of week '%s'", req.DayOfWeek))
	}
	start, err := helpers.ParseClock(req.StartTime)
	if err != nil {
		return models.ScheduleInput{}, apperrors.NewValidationError(err.Error())
	}
	end, err := helpers.ParseClock(req.EndTime)
	if err != nil {
		return models.ScheduleInput{}, apperrors.NewValidationError(err.Error())
	}
	if !helpers.ClockBefore(start, end) {
		return models.ScheduleInput{}, apperrors.NewValidationError("start time must be before end time")
	}

	if _, err := s.lookups.GetByID(ctx, models.TableClass, req.ClassID); err != nil {
		return models.ScheduleInput{}, err
	}
	if _, err := s.subjects.GetByID(ctx, req.SubjectID); err != nil {
		return models.ScheduleInput{}, err
	}
	year := helpers.NullableID(req.AcademicYearID)
	if year != nil {
		if _, err := s.lookups.GetByID(ctx, models.TableAcademicYear, *year); err != nil {
			return models.ScheduleInput{}, err
		}
	}

	return models.ScheduleInput{
		ClassID:        req.ClassID,
		SubjectID:      req.SubjectID,
		DayOfWeek:      day,
		StartTime:      start,
		EndTime:        end,
		AcademicYearID: year,
	}, nil
}

func (s *scheduleServiceImpl) checkConflict(ctx context.Context, in models.ScheduleInput, excludeID int64) error {
	conflict, err := s.schedules.HasConflict(ctx, in, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return apperrors.ErrScheduleConflict
	}
	return nil
}

func (s *scheduleServiceImpl) Create(ctx context.Context, req dto.ScheduleRequest) (int64, error) {
	in, err := s.validate(ctx, req)
	if err != nil {
		return 0, err
	}
	if err := s.checkConflict(ctx, in, 0); err != nil {
		return 0, err
	}

	id, err := s.schedules.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	logger.Info().Int64("scheduleId", id).Int64("classId", in.ClassID).Str("day", in.DayOfWeek).
		Str("start", in.StartTime).Msg("Schedule created")
	return id, nil
}

// Update excludes the entry itself from the overlap check
func (s *scheduleServiceImpl) Update(ctx context.Context, id int64, req dto.ScheduleRequest) error {
	if _, err := s.schedules.GetByID(ctx, id); err != nil {
		return err
	}
	in, err := s.validate(ctx, req)
	if err != nil {
		return err
	}
	if err := s.checkConflict(ctx, in, id); err != nil {
		return err
	}
	return s.schedules.Update(ctx, id, in)
}

func (s *scheduleServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.schedules.Delete(ctx, id)
}
