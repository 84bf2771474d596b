package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
)

const upsertAttendanceSuffix = "ON DUPLICATE KEY UPDATE status = VALUES(status), notes = VALUES(notes), day_of_week = VALUES(day_of_week)"

var attendanceColumns = []string{"student_id", "subject_id", "attendance_date", "day_of_week", "status", "notes"}

// AttendanceRepository handles database operations for attendance rows
type AttendanceRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db, sb: statementBuilder()}
}

func attendanceValues(a models.Attendance) []interface{} {
	return []interface{}{
		a.StudentID, a.SubjectID, a.AttendanceDate.Format(helpers.DateLayout),
		a.AttendanceDate.Weekday().String(), string(a.Status), a.Notes,
	}
}

// Upsert records a status, replacing the row of the same student, subject and date
func (r *AttendanceRepository) Upsert(ctx context.Context, a models.Attendance) error {
	_, err := r.UpsertMany(ctx, []models.Attendance{a})
	return err
}

// UpsertMany records several statuses in one statement
func (r *AttendanceRepository) UpsertMany(ctx context.Context, rows []models.Attendance) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	q := r.sb.Insert("attendance").Columns(attendanceColumns...)
	for _, a := range rows {
		q = q.Values(attendanceValues(a)...)
	}
	query, args, err := q.Suffix(upsertAttendanceSuffix).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert attendance SQL")
		return 0, fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrReferencedEntity
		}
		logger.Error().Err(err).Int("rows", len(rows)).Msg("Error saving attendance")
		return 0, fmt.Errorf("error saving attendance: %w", err)
	}
	return len(rows), nil
}

// InsertIfAbsent inserts the row unless one exists for the same student,
// subject and date. It reports whether a row was written.
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, a models.Attendance) (bool, error) {
	query, args, err := r.sb.Insert("attendance").Options("IGNORE").
		Columns(attendanceColumns...).
		Values(attendanceValues(a)...).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert attendance query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentId", a.StudentID).Msg("Error inserting attendance")
		return false, fmt.Errorf("error inserting attendance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Report counts each status per student of the class for a subject between
// from and to inclusive. Students without rows get zeros.
func (r *AttendanceRepository) Report(ctx context.Context, classID, subjectID int64, from, to time.Time) ([]models.AttendanceReportRow, error) {
	query, args, err := r.sb.Select(
		"s.id AS student_id", "COALESCE(s.name, '') AS name",
		"COALESCE(SUM(a.status = 'Present'), 0) AS present",
		"COALESCE(SUM(a.status = 'Absent'), 0) AS absent",
		"COALESCE(SUM(a.status = 'Late'), 0) AS late",
		"COALESCE(SUM(a.status = 'Excused'), 0) AS excused",
	).
		From("mystudent s").
		LeftJoin("attendance a ON a.student_id = s.id AND a.subject_id = ? AND a.attendance_date BETWEEN ? AND ?",
			subjectID, from.Format(helpers.DateLayout), to.Format(helpers.DateLayout)).
		Where(squirrel.Eq{"s.class_id": classID}).
		GroupBy("s.id", "s.name").
		OrderBy("s.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance report query: %w", err)
	}

	rows := []models.AttendanceReportRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", classID).Int64("subjectId", subjectID).Msg("Error building attendance report")
		return nil, fmt.Errorf("error generating attendance report: %w", err)
	}
	return rows, nil
}

// DailyLog lists the students of a class with their status for the subject on date
func (r *AttendanceRepository) DailyLog(ctx context.Context, date time.Time, classID int64, academicYearID *int64, subjectID int64) ([]models.DailyLogRow, error) {
	q := r.sb.Select(
		"s.id AS student_id", "COALESCE(s.name, '') AS name", "COALESCE(s.sex, '') AS sex",
		"a.status", "a.notes",
	).
		From("mystudent s").
		LeftJoin("attendance a ON a.student_id = s.id AND a.subject_id = ? AND a.attendance_date = ?",
			subjectID, date.Format(helpers.DateLayout)).
		Where(squirrel.Eq{"s.class_id": classID}).
		OrderBy("s.name", "s.id")
	if academicYearID != nil {
		q = q.Where(squirrel.Eq{"s.academic_year_id": *academicYearID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily log query: %w", err)
	}

	rows := []models.DailyLogRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", classID).Msg("Error loading daily log")
		return nil, fmt.Errorf("error loading daily log: %w", err)
	}
	return rows, nil
}

// Marks returns every status recorded for the subject by students of the
// class and academic year, ordered by date.
func (r *AttendanceRepository) Marks(ctx context.Context, classID, academicYearID, subjectID int64) ([]models.AttendanceMark, error) {
	query, args, err := r.sb.Select("a.student_id", "a.attendance_date", "a.status").
		From("attendance a").
		Join("mystudent s ON s.id = a.student_id").
		Where(squirrel.Eq{
			"s.class_id":         classID,
			"s.academic_year_id": academicYearID,
			"a.subject_id":       subjectID,
		}).
		OrderBy("a.attendance_date", "a.student_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance marks query: %w", err)
	}

	marks := []models.AttendanceMark{}
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("error loading attendance marks: %w", err)
	}
	return marks, nil
}

// SweepAbsent marks Absent every student of the class that has no row for
// the subject on date. It returns the number of rows inserted.
func (r *AttendanceRepository) SweepAbsent(ctx context.Context, classID, subjectID int64, date time.Time) (int64, error) {
	day := date.Format(helpers.DateLayout)
	students := r.sb.Select("id").
		Column("?", subjectID).
		Column("?", day).
		Column("?", date.Weekday().String()).
		Column("?", string(models.StatusAbsent)).
		Column("?", "Auto-marked").
		From("mystudent").
		Where(squirrel.Eq{"class_id": classID})

	query, args, err := r.sb.Insert("attendance").Options("IGNORE").
		Columns(attendanceColumns...).
		Select(students).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build absence sweep query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("classId", classID).Int64("subjectId", subjectID).Msg("Error sweeping absences")
		return 0, fmt.Errorf("error marking absences: %w", err)
	}
	return res.RowsAffected()
}
