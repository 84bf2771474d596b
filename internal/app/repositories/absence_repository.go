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

// AbsenceRepository handles dated absences of students
type AbsenceRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewAbsenceRepository creates a new AbsenceRepository
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db, sb: statementBuilder()}
}

// Create records an absence; only one per student and day is allowed
func (r *AbsenceRepository) Create(ctx context.Context, studentID int64, date time.Time, reason *string) (int64, error) {
	query, args, err := r.sb.Insert("absence").
		Columns("student_id", "date", "reason").
		Values(studentID, date.Format(helpers.DateLayout), reason).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create absence query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		switch {
		case dberrors.IsDuplicateEntry(err):
			return 0, apperrors.ErrAbsenceExists
		case dberrors.IsForeignKeyViolation(err):
			return 0, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentId", studentID).Msg("Error creating absence")
		return 0, fmt.Errorf("error creating absence: %w", err)
	}
	return res.LastInsertId()
}

// ListByStudent returns the absences of a student, newest first
func (r *AbsenceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Absence, error) {
	query, args, err := r.sb.Select("id", "student_id", "date", "reason").
		From("absence").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list absences query: %w", err)
	}

	absences := []models.Absence{}
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, fmt.Errorf("error listing absences: %w", err)
	}
	return absences, nil
}

// Delete removes an absence of the given student
func (r *AbsenceRepository) Delete(ctx context.Context, studentID, id int64) error {
	query, args, err := r.sb.Delete("absence").Where(squirrel.Eq{"id": id, "student_id": studentID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete absence query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error deleting absence: %w", err)
	}
	return expectOne(res, apperrors.ErrAbsenceNotFound)
}
