package services

import (
	"context"
	"fmt"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// MajorService manages majors and their departments
type MajorService interface {
	List(ctx context.Context, departmentID *int64) ([]models.Major, error)
	Get(ctx context.Context, id int64) (*models.Major, error)
	Create(ctx context.Context, req dto.MajorRequest) (int64, error)
	Update(ctx context.Context, id int64, req dto.MajorRequest) error
	Delete(ctx context.Context, id int64) error
}

type majorServiceImpl struct {
	majors  MajorStore
	lookups LookupStore
}

// NewMajorService creates a new major service instance
func NewMajorService(majors MajorStore, lookups LookupStore) MajorService {
	return &majorServiceImpl{majors: majors, lookups: lookups}
}

func (s *majorServiceImpl) List(ctx context.Context, departmentID *int64) ([]models.Major, error) {
	if departmentID != nil {
		if _, err := s.lookups.GetByID(ctx, models.TableDepartment, *departmentID); err != nil {
			return nil, err
		}
	}
	return s.majors.List(ctx, departmentID)
}

func (s *majorServiceImpl) Get(ctx context.Context, id int64) (*models.Major, error) {
	return s.majors.GetByID(ctx, id)
}

// validate checks the department and rejects a name already used in it
func (s *majorServiceImpl) validate(ctx context.Context, req dto.MajorRequest, excludeID int64) (string, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return "", err
	}
	if _, err := s.lookups.GetByID(ctx, models.TableDepartment, req.DepartmentID); err != nil {
		return "", err
	}

	exists, err := s.majors.ExistsInDepartment(ctx, name, req.DepartmentID, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperrors.NewCustomError(apperrors.ErrMajorAlreadyExists,
			fmt.Sprintf("major '%s' already exists in this department", name))
	}
	return name, nil
}

func (s *majorServiceImpl) Create(ctx context.Context, req dto.MajorRequest) (int64, error) {
	name, err := s.validate(ctx, req, 0)
	if err != nil {
		return 0, err
	}
	return s.majors.Create(ctx, name, req.DepartmentID)
}

func (s *majorServiceImpl) Update(ctx context.Context, id int64, req dto.MajorRequest) error {
	if _, err := s.majors.GetByID(ctx, id); err != nil {
		return err
	}
	name, err := s.validate(ctx, req, id)
	if err != nil {
		return err
	}
	return s.majors.Update(ctx, id, name, req.DepartmentID)
}

func (s *majorServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.majors.Delete(ctx, id)
}
