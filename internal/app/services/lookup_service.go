package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// LookupService manages departments, classes and academic years
type LookupService interface {
	List(ctx context.Context, table models.LookupTable) ([]models.LookupItem, error)
	Get(ctx context.Context, table models.LookupTable, id int64) (*models.LookupItem, error)
	Create(ctx context.Context, table models.LookupTable, name string) (int64, error)
	Rename(ctx context.Context, table models.LookupTable, id int64, name string) error
	Delete(ctx context.Context, table models.LookupTable, id int64) error
}

type lookupServiceImpl struct {
	store LookupStore
}

// NewLookupService creates a new lookup service instance
func NewLookupService(store LookupStore) LookupService {
	return &lookupServiceImpl{store: store}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name cannot be empty")
	}
	return name, nil
}

func (s *lookupServiceImpl) List(ctx context.Context, table models.LookupTable) ([]models.LookupItem, error) {
	return s.store.List(ctx, table)
}

func (s *lookupServiceImpl) Get(ctx context.Context, table models.LookupTable, id int64) (*models.LookupItem, error) {
	return s.store.GetByID(ctx, table, id)
}

// Create adds a name; an existing name is a conflict
func (s *lookupServiceImpl) Create(ctx context.Context, table models.LookupTable, name string) (int64, error) {
	name, err := cleanName(name)
	if err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, table, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNameAlreadyExists) {
			return 0, apperrors.NewConflictError(fmt.Sprintf("%s '%s' already exists", table.Label(), name))
		}
		return 0, err
	}
	return id, nil
}

func (s *lookupServiceImpl) Rename(ctx context.Context, table models.LookupTable, id int64, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.store.Rename(ctx, table, id, name); err != nil {
		if apperrors.Is(err, apperrors.ErrNameAlreadyExists) {
			return apperrors.NewConflictError(fmt.Sprintf("%s '%s' already exists", table.Label(), name))
		}
		return err
	}
	logger.Info().Str("table", string(table)).Int64("id", id).Str("name", name).Msg("Lookup row renamed")
	return nil
}

func (s *lookupServiceImpl) Delete(ctx context.Context, table models.LookupTable, id int64) error {
	if err := s.store.Delete(ctx, table, id); err != nil {
		return err
	}
	logger.Info().Str("table", string(table)).Int64("id", id).Msg("Lookup row deleted")
	return nil
}
