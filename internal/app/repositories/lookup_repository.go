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

// LookupRepository manages the name-only tables department, class and
// academic_year. Table names come from models.LookupTable, never from input.
type LookupRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewLookupRepository creates a new LookupRepository
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db, sb: statementBuilder()}
}

func notFoundFor(table models.LookupTable) error {
	switch table {
	case models.TableDepartment:
		return apperrors.ErrDepartmentNotFound
	case models.TableClass:
		return apperrors.ErrClassNotFound
	case models.TableAcademicYear:
		return apperrors.ErrAcademicYearNotFound
	}
	return apperrors.ErrResourceNotFound
}

// List returns every row ordered by name; academic years newest first
func (r *LookupRepository) List(ctx context.Context, table models.LookupTable) ([]models.LookupItem, error) {
	order := "name"
	if table == models.TableAcademicYear {
		order = "name DESC"
	}

	query, args, err := r.sb.Select("id", "name").From(string(table)).OrderBy(order).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", string(table)).Msg("Error building list lookup SQL")
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	items := []models.LookupItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		logger.Error().Err(err).Str("table", string(table)).Msg("Error listing lookup rows")
		return nil, fmt.Errorf("error listing %s: %w", table, err)
	}
	return items, nil
}

// GetByID fetches one row
func (r *LookupRepository) GetByID(ctx context.Context, table models.LookupTable, id int64) (*models.LookupItem, error) {
	return r.getOne(ctx, table, squirrel.Eq{"id": id})
}

// GetByName fetches one row by exact name
func (r *LookupRepository) GetByName(ctx context.Context, table models.LookupTable, name string) (*models.LookupItem, error) {
	return r.getOne(ctx, table, squirrel.Eq{"name": name})
}

func (r *LookupRepository) getOne(ctx context.Context, table models.LookupTable, where squirrel.Eq) (*models.LookupItem, error) {
	query, args, err := r.sb.Select("id", "name").From(string(table)).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	var item models.LookupItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundFor(table)
		}
		logger.Error().Err(err).Str("table", string(table)).Msg("Error fetching lookup row")
		return nil, fmt.Errorf("error retrieving %s: %w", table, err)
	}
	return &item, nil
}

// Create inserts a name. An existing name yields ErrNameAlreadyExists.
func (r *LookupRepository) Create(ctx context.Context, table models.LookupTable, name string) (int64, error) {
	query, args, err := r.sb.Insert(string(table)).Options("IGNORE").Columns("name").Values(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", string(table)).Str("name", name).Msg("Error inserting lookup row")
		return 0, fmt.Errorf("error creating %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, apperrors.ErrNameAlreadyExists
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new id: %w", err)
	}
	logger.Info().Str("table", string(table)).Int64("id", id).Str("name", name).Msg("Lookup row created")
	return id, nil
}

// EnsureName returns the id of name, inserting it first when missing
func (r *LookupRepository) EnsureName(ctx context.Context, table models.LookupTable, name string) (int64, error) {
	query, args, err := r.sb.Insert(string(table)).Options("IGNORE").Columns("name").Values(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("error ensuring %s %q: %w", table, name, err)
	}

	item, err := r.GetByName(ctx, table, name)
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

// Rename changes the name of a row
func (r *LookupRepository) Rename(ctx context.Context, table models.LookupTable, id int64, name string) error {
	query, args, err := r.sb.Update(string(table)).Set("name", name).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateEntry(err) {
			return apperrors.ErrNameAlreadyExists
		}
		logger.Error().Err(err).Str("table", string(table)).Int64("id", id).Msg("Error renaming lookup row")
		return fmt.Errorf("error updating %s: %w", table, err)
	}
	return expectOne(res, notFoundFor(table))
}

// Delete removes a row. Students referencing it keep a NULL reference.
func (r *LookupRepository) Delete(ctx context.Context, table models.LookupTable, id int64) error {
	query, args, err := r.sb.Delete(string(table)).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsRowReferenced(err) {
			return apperrors.NewConflictError(fmt.Sprintf("%s is still referenced", table.Label()))
		}
		logger.Error().Err(err).Str("table", string(table)).Int64("id", id).Msg("Error deleting lookup row")
		return fmt.Errorf("error deleting %s: %w", table, err)
	}
	return expectOne(res, notFoundFor(table))
}
