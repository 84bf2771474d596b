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

// MajorRepository handles database operations for majors
type MajorRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewMajorRepository creates a new MajorRepository
func NewMajorRepository(db *sqlx.DB) *MajorRepository {
	return &MajorRepository{db: db, sb: statementBuilder()}
}

func (r *MajorRepository) selectMajors() squirrel.SelectBuilder {
	return r.sb.Select("m.id", "m.name", "m.department_id", "d.name AS department_name").
		From("major m").
		Join("department d ON d.id = m.department_id")
}

// List returns majors ordered by department then name. A non-nil
// departmentID restricts the list to that department.
func (r *MajorRepository) List(ctx context.Context, departmentID *int64) ([]models.Major, error) {
	q := r.selectMajors().OrderBy("d.name", "m.name")
	if departmentID != nil {
		q = q.Where(squirrel.Eq{"m.department_id": *departmentID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list majors SQL")
		return nil, fmt.Errorf("failed to build list majors query: %w", err)
	}

	majors := []models.Major{}
	if err := r.db.SelectContext(ctx, &majors, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing majors")
		return nil, fmt.Errorf("error listing majors: %w", err)
	}
	return majors, nil
}

// GetByID retrieves a major with its department name
func (r *MajorRepository) GetByID(ctx context.Context, id int64) (*models.Major, error) {
	return r.getOne(ctx, squirrel.Eq{"m.id": id})
}

// GetByName retrieves a major by its unique name
func (r *MajorRepository) GetByName(ctx context.Context, name string) (*models.Major, error) {
	return r.getOne(ctx, squirrel.Eq{"m.name": name})
}

func (r *MajorRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Major, error) {
	query, args, err := r.selectMajors().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get major query: %w", err)
	}

	var major models.Major
	if err := r.db.GetContext(ctx, &major, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrMajorNotFound
		}
		logger.Error().Err(err).Msg("Error fetching major")
		return nil, fmt.Errorf("error retrieving major: %w", err)
	}
	return &major, nil
}

// ExistsInDepartment reports whether name is used in the department,
// ignoring excludeID.
func (r *MajorRepository) ExistsInDepartment(ctx context.Context, name string, departmentID, excludeID int64) (bool, error) {
	query, args, err := r.sb.Select("COUNT(*)").From("major").
		Where(squirrel.Eq{"name": name, "department_id": departmentID}).
		Where(squirrel.NotEq{"id": excludeID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build major exists query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("error checking major existence: %w", err)
	}
	return count > 0, nil
}

// Create inserts a major and returns its id
func (r *MajorRepository) Create(ctx context.Context, name string, departmentID int64) (int64, error) {
	query, args, err := r.sb.Insert("major").Columns("name", "department_id").Values(name, departmentID).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create major query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.mapWriteError(err, name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new major id: %w", err)
	}
	logger.Info().Int64("id", id).Str("name", name).Msg("Major created")
	return id, nil
}

// Update changes name and department of a major
func (r *MajorRepository) Update(ctx context.Context, id int64, name string, departmentID int64) error {
	query, args, err := r.sb.Update("major").
		Set("name", name).
		Set("department_id", departmentID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update major query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.mapWriteError(err, name)
	}
	return expectOne(res, apperrors.ErrMajorNotFound)
}

// Delete removes a major
func (r *MajorRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("major").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete major query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error deleting major")
		return fmt.Errorf("error deleting major: %w", err)
	}
	return expectOne(res, apperrors.ErrMajorNotFound)
}

func (r *MajorRepository) mapWriteError(err error, name string) error {
	switch {
	case dberrors.IsDuplicateEntry(err):
		return apperrors.ErrNameAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrDepartmentNotFound
	}
	logger.Error().Err(err).Str("name", name).Msg("Error writing major")
	return fmt.Errorf("error saving major: %w", err)
}
