package services

import (
	"context"
	"strings"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
)

// SubjectService manages subjects
type SubjectService interface {
	List(ctx context.Context) ([]models.Subject, error)
	Get(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, req dto.SubjectRequest) (int64, error)
	Update(ctx context.Context, id int64, req dto.SubjectRequest) error
	Delete(ctx context.Context, id int64) error
}

type subjectServiceImpl struct {
	store SubjectStore
}

// NewSubjectService creates a new subject service instance
func NewSubjectService(store SubjectStore) SubjectService {
	return &subjectServiceImpl{store: store}
}

func (s *subjectServiceImpl) List(ctx context.Context) ([]models.Subject, error) {
	return s.store.List(ctx)
}

func (s *subjectServiceImpl) Get(ctx context.Context, id int64) (*models.Subject, error) {
	return s.store.GetByID(ctx, id)
}

func toSubject(id int64, req dto.SubjectRequest) (models.Subject, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return models.Subject{}, err
	}
	return models.Subject{
		ID:          id,
		Name:        name,
		Code:        strings.TrimSpace(req.Code),
		Description: strings.TrimSpace(req.Description),
	}, nil
}

func (s *subjectServiceImpl) Create(ctx context.Context, req dto.SubjectRequest) (int64, error) {
	subject, err := toSubject(0, req)
	if err != nil {
		return 0, err
	}
	return s.store.Create(ctx, subject)
}

func (s *subjectServiceImpl) Update(ctx context.Context, id int64, req dto.SubjectRequest) error {
	subject, err := toSubject(id, req)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, subject)
}

// Delete removes the subject together with its schedules and attendance
func (s *subjectServiceImpl) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
