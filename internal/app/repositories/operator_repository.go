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

// OperatorRepository handles database operations for operators
type OperatorRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewOperatorRepository creates a new OperatorRepository
func NewOperatorRepository(db *sqlx.DB) *OperatorRepository {
	return &OperatorRepository{db: db, sb: statementBuilder()}
}

// Create inserts an operator
func (r *OperatorRepository) Create(ctx context.Context, username, passwordHash string, role models.Role) (int64, error) {
	query, args, err := r.sb.Insert("operator").
		Columns("username", "password_hash", "role").
		Values(username, passwordHash, string(role)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create operator query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateEntry(err) {
			return 0, apperrors.ErrOperatorExists
		}
		logger.Error().Err(err).Str("username", username).Msg("Error creating operator")
		return 0, fmt.Errorf("error creating operator: %w", err)
	}
	return res.LastInsertId()
}

// GetByUsername fetches an operator including the password hash
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query, args, err := r.sb.Select("id", "username", "password_hash", "role", "created_at").
		From("operator").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get operator query: %w", err)
	}

	var op models.Operator
	if err := r.db.GetContext(ctx, &op, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrOperatorNotFound
		}
		return nil, fmt.Errorf("error retrieving operator: %w", err)
	}
	return &op, nil
}

// List returns all operators ordered by username
func (r *OperatorRepository) List(ctx context.Context) ([]models.Operator, error) {
	query, args, err := r.sb.Select("id", "username", "password_hash", "role", "created_at").
		From("operator").
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list operators query: %w", err)
	}

	ops := []models.Operator{}
	if err := r.db.SelectContext(ctx, &ops, query, args...); err != nil {
		return nil, fmt.Errorf("error listing operators: %w", err)
	}
	return ops, nil
}

// Count returns the number of operators
func (r *OperatorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM operator"); err != nil {
		return 0, fmt.Errorf("error counting operators: %w", err)
	}
	return n, nil
}
