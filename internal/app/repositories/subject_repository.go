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

// SubjectRepository handles database operations for subjects
type SubjectRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db, sb: statementBuilder()}
}

var subjectColumns = []string{"id", "name", "COALESCE(code, '') AS code", "COALESCE(description, '') AS description"}

// List returns all subjects ordered by name
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	query, args, err := r.sb.Select(subjectColumns...).From("subject").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list subjects query: %w", err)
	}

	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing subjects")
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	return subjects, nil
}

// GetByID retrieves a subject
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	query, args, err := r.sb.Select(subjectColumns...).From("subject").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error retrieving subject: %w", err)
	}
	return &subject, nil
}

// Create inserts a subject; empty code and description are stored as NULL
func (r *SubjectRepository) Create(ctx context.Context, s models.Subject) (int64, error) {
	query, args, err := r.sb.Insert("subject").
		Columns("name", "code", "description").
		Values(s.Name, nullIfEmpty(s.Code), nullIfEmpty(s.Description)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create subject query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateEntry(err) {
			return 0, apperrors.ErrNameAlreadyExists
		}
		logger.Error().Err(err).Str("name", s.Name).Msg("Error creating subject")
		return 0, fmt.Errorf("error creating subject: %w", err)
	}
	return res.LastInsertId()
}

// Update rewrites a subject
func (r *SubjectRepository) Update(ctx context.Context, s models.Subject) error {
	query, args, err := r.sb.Update("subject").
		Set("name", s.Name).
		Set("code", nullIfEmpty(s.Code)).
		Set("description", nullIfEmpty(s.Description)).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update subject query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateEntry(err) {
			return apperrors.ErrNameAlreadyExists
		}
		logger.Error().Err(err).Int64("id", s.ID).Msg("Error updating subject")
		return fmt.Errorf("error updating subject: %w", err)
	}
	return expectOne(res, apperrors.ErrSubjectNotFound)
}

// Delete removes a subject with its schedules and attendance rows
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("subject").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete subject query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting subject")
		return fmt.Errorf("error deleting subject: %w", err)
	}
	return expectOne(res, apperrors.ErrSubjectNotFound)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
