package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// ScheduleRepository handles database operations for class schedules
type ScheduleRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db, sb: statementBuilder()}
}

func (r *ScheduleRepository) selectSchedules() squirrel.SelectBuilder {
	return r.sb.Select(
		"cs.id", "cs.class_id", "c.name AS class_name",
		"cs.subject_id", "s.name AS subject_name", "cs.day_of_week",
		"TIME_FORMAT(cs.start_time, '%H:%i') AS start_time",
		"TIME_FORMAT(cs.end_time, '%H:%i') AS end_time",
		"cs.academic_year_id", "ay.name AS academic_year_name",
	).
		From("class_schedule cs").
		Join("class c ON c.id = cs.class_id").
		Join("subject s ON s.id = cs.subject_id").
		LeftJoin("academic_year ay ON ay.id = cs.academic_year_id")
}

// Search lists schedule entries matching the filter. Entries without an
// academic year sort last.
func (r *ScheduleRepository) Search(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error) {
	q := r.selectSchedules()
	if f.ClassName != "" {
		q = q.Where(squirrel.Like{"c.name": "%" + f.ClassName + "%"})
	}
	if f.SubjectID != nil {
		q = q.Where(squirrel.Eq{"cs.subject_id": *f.SubjectID})
	}
	if f.DayOfWeek != "" {
		q = q.Where(squirrel.Eq{"cs.day_of_week": f.DayOfWeek})
	}
	if f.NoAcademicYear {
		q = q.Where(squirrel.Eq{"cs.academic_year_id": nil})
	} else if f.AcademicYearID != nil {
		q = q.Where(squirrel.Eq{"cs.academic_year_id": *f.AcademicYearID})
	}
	q = q.OrderBy("(cs.academic_year_id IS NULL)", "ay.name", "c.name", orderByWeekday("cs.day_of_week"), "cs.start_time")

	query, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building schedule search SQL")
		return nil, fmt.Errorf("failed to build schedule search query: %w", err)
	}

	schedules := []models.Schedule{}
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error searching schedules")
		return nil, fmt.Errorf("error searching schedules: %w", err)
	}
	return schedules, nil
}

// GetByID retrieves a schedule entry
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query, args, err := r.selectSchedules().Where(squirrel.Eq{"cs.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get schedule query: %w", err)
	}

	var s models.Schedule
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error retrieving schedule: %w", err)
	}
	return &s, nil
}

// HasConflict reports whether another entry of the same class, day and
// academic year overlaps the time range. excludeID is skipped.
func (r *ScheduleRepository) HasConflict(ctx context.Context, in models.ScheduleInput, excludeID int64) (bool, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("class_schedule").
		Where(squirrel.Eq{"class_id": in.ClassID, "day_of_week": in.DayOfWeek}).
		Where("academic_year_id <=> ?", in.AcademicYearID).
		Where("start_time < ? AND end_time > ?", in.EndTime, in.StartTime).
		Where(squirrel.NotEq{"id": excludeID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build conflict query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", in.ClassID).Msg("Error checking schedule conflict")
		return false, fmt.Errorf("error checking schedule conflict: %w", err)
	}
	return count > 0, nil
}

// Create inserts a schedule entry
func (r *ScheduleRepository) Create(ctx context.Context, in models.ScheduleInput) (int64, error) {
	query, args, err := r.sb.Insert("class_schedule").
		Columns("class_id", "subject_id", "day_of_week", "start_time", "end_time", "academic_year_id").
		Values(in.ClassID, in.SubjectID, in.DayOfWeek, in.StartTime, in.EndTime, in.AcademicYearID).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create schedule query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapScheduleWriteError(err)
	}
	return res.LastInsertId()
}

// Update rewrites a schedule entry
func (r *ScheduleRepository) Update(ctx context.Context, id int64, in models.ScheduleInput) error {
	query, args, err := r.sb.Update("class_schedule").
		Set("class_id", in.ClassID).
		Set("subject_id", in.SubjectID).
		Set("day_of_week", in.DayOfWeek).
		Set("start_time", in.StartTime).
		Set("end_time", in.EndTime).
		Set("academic_year_id", in.AcademicYearID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update schedule query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapScheduleWriteError(err)
	}
	return expectOne(res, apperrors.ErrScheduleNotFound)
}

// Delete removes a schedule entry
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("class_schedule").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete schedule query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting schedule: %w", err)
	}
	return expectOne(res, apperrors.ErrScheduleNotFound)
}

// ListForClass returns the weekly timetable of a class, Monday first
func (r *ScheduleRepository) ListForClass(ctx context.Context, classID int64) ([]models.StudentScheduleEntry, error) {
	query, args, err := r.sb.Select(
		"cs.day_of_week",
		"TIME_FORMAT(cs.start_time, '%H:%i') AS start_time",
		"TIME_FORMAT(cs.end_time, '%H:%i') AS end_time",
		"cs.subject_id", "s.name AS subject_name",
	).
		From("class_schedule cs").
		Join("subject s ON s.id = cs.subject_id").
		Where(squirrel.Eq{"cs.class_id": classID}).
		OrderBy(orderByWeekday("cs.day_of_week"), "cs.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build class timetable query: %w", err)
	}

	entries := []models.StudentScheduleEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", classID).Msg("Error loading class timetable")
		return nil, fmt.Errorf("error loading timetable: %w", err)
	}
	return entries, nil
}

// IsScheduled reports whether the subject is taught to the class. An empty
// day matches any day.
func (r *ScheduleRepository) IsScheduled(ctx context.Context, classID, subjectID int64, day string) (bool, error) {
	q := r.sb.Select("COUNT(*)").From("class_schedule").
		Where(squirrel.Eq{"class_id": classID, "subject_id": subjectID})
	if day != "" {
		q = q.Where(squirrel.Eq{"day_of_week": day})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build scheduled query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("error checking schedule: %w", err)
	}
	return count > 0, nil
}

// ScheduledOn lists the distinct class/subject pairs taught on day
func (r *ScheduleRepository) ScheduledOn(ctx context.Context, day string) ([]models.ScheduledPair, error) {
	query, args, err := r.sb.Select("class_id", "subject_id").Distinct().
		From("class_schedule").
		Where(squirrel.Eq{"day_of_week": day}).
		OrderBy("class_id", "subject_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scheduled-on query: %w", err)
	}

	pairs := []models.ScheduledPair{}
	if err := r.db.SelectContext(ctx, &pairs, query, args...); err != nil {
		return nil, fmt.Errorf("error listing schedules for %s: %w", day, err)
	}
	return pairs, nil
}

func mapScheduleWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateEntry(err):
		return apperrors.ErrScheduleConflict
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrReferencedEntity
	}
	logger.Error().Err(err).Msg("Error writing schedule")
	return fmt.Errorf("error saving schedule: %w", err)
}
