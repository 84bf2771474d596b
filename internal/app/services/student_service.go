package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/excel"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
	"github.com/yigit/registrar/internal/pkg/photo"
)

// StudentService handles student records, photos, timetables and absences
type StudentService interface {
	List(ctx context.Context, f models.StudentFilter) ([]models.Student, int64, error)
	Get(ctx context.Context, id int64) (*models.Student, error)
	Search(ctx context.Context, term string) ([]models.Student, error)
	Create(ctx context.Context, req dto.StudentRequest) (int64, error)
	Update(ctx context.Context, id int64, req dto.StudentRequest) error
	Delete(ctx context.Context, id int64) error

	SetPhoto(ctx context.Context, id int64, data []byte) error
	Photo(ctx context.Context, id int64) ([]byte, error)
	DeletePhoto(ctx context.Context, id int64) error

	Schedule(ctx context.Context, id int64) ([]models.StudentScheduleEntry, error)

	RecordAbsence(ctx context.Context, id int64, req dto.AbsenceRequest) (int64, error)
	Absences(ctx context.Context, id int64) ([]models.Absence, error)
	DeleteAbsence(ctx context.Context, id, absenceID int64) error
}

type studentServiceImpl struct {
	students  StudentStore
	schedules ScheduleStore
	absences  AbsenceStore
	photoOpts photo.Options
}

// NewStudentService creates a new student service instance
func NewStudentService(students StudentStore, schedules ScheduleStore, absences AbsenceStore, photoOpts photo.Options) StudentService {
	return &studentServiceImpl{
		students:  students,
		schedules: schedules,
		absences:  absences,
		photoOpts: photoOpts,
	}
}

// studentInput validates a request and converts it to the stored columns
func studentInput(req dto.StudentRequest) (models.StudentInput, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return models.StudentInput{}, err
	}
	sex, ok := excel.NormalizeSex(req.Sex)
	if !ok {
		return models.StudentInput{}, apperrors.NewValidationError(fmt.Sprintf("sex must be %s or %s", excel.SexMale, excel.SexFemale))
	}

	score := 0.0
	if req.Score != nil {
		score = *req.Score
	}

	return models.StudentInput{
		Name:           name,
		Sex:            sex,
		Score:          score,
		Email:          helpers.NullableString(req.Email),
		Phone:          helpers.NullableString(req.Phone),
		DepartmentID:   &req.DepartmentID,
		MajorID:        &req.MajorID,
		ClassID:        &req.ClassID,
		AcademicYearID: &req.AcademicYearID,
	}, nil
}

func (s *studentServiceImpl) List(ctx context.Context, f models.StudentFilter) ([]models.Student, int64, error) {
	students, err := s.students.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if f.Limit == 0 {
		return students, int64(len(students)), nil
	}

	total, err := s.students.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (s *studentServiceImpl) Get(ctx context.Context, id int64) (*models.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *studentServiceImpl) Search(ctx context.Context, term string) ([]models.Student, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewValidationError("search term cannot be empty")
	}
	return s.students.Search(ctx, term)
}

func (s *studentServiceImpl) Create(ctx context.Context, req dto.StudentRequest) (int64, error) {
	in, err := studentInput(req)
	if err != nil {
		return 0, err
	}
	return s.students.Create(ctx, in)
}

func (s *studentServiceImpl) Update(ctx context.Context, id int64, req dto.StudentRequest) error {
	in, err := studentInput(req)
	if err != nil {
		return err
	}
	if err := s.students.Update(ctx, id, in); err != nil {
		return err
	}
	logger.Info().Int64("studentId", id).Msg("Student updated")
	return nil
}

func (s *studentServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info().Int64("studentId", id).Msg("Student deleted")
	return nil
}

// SetPhoto normalizes an uploaded image to JPEG and stores it
func (s *studentServiceImpl) SetPhoto(ctx context.Context, id int64, data []byte) error {
	if len(data) == 0 {
		return apperrors.NewBadRequestError("photo is empty")
	}
	normalized, err := photo.Normalize(data, s.photoOpts)
	if err != nil {
		if errors.Is(err, photo.ErrUnsupportedImage) {
			return apperrors.NewBadRequestError("photo must be a JPEG, PNG, GIF or WebP image")
		}
		return err
	}

	if err := s.students.SetPhoto(ctx, id, normalized); err != nil {
		return err
	}
	logger.Info().Int64("studentId", id).Int("bytes", len(normalized)).Msg("Student photo saved")
	return nil
}

func (s *studentServiceImpl) Photo(ctx context.Context, id int64) ([]byte, error) {
	return s.students.GetPhoto(ctx, id)
}

func (s *studentServiceImpl) DeletePhoto(ctx context.Context, id int64) error {
	return s.students.SetPhoto(ctx, id, nil)
}

// Schedule returns the weekly timetable of the student's class
func (s *studentServiceImpl) Schedule(ctx context.Context, id int64) ([]models.StudentScheduleEntry, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student.ClassID == nil {
		return nil, apperrors.ErrStudentHasNoClass
	}
	return s.schedules.ListForClass(ctx, *student.ClassID)
}

func (s *studentServiceImpl) RecordAbsence(ctx context.Context, id int64, req dto.AbsenceRequest) (int64, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return 0, apperrors.NewValidationError(err.Error())
	}
	if _, err := s.students.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return s.absences.Create(ctx, id, date, helpers.NullableString(req.Reason))
}

func (s *studentServiceImpl) Absences(ctx context.Context, id int64) ([]models.Absence, error) {
	if _, err := s.students.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.absences.ListByStudent(ctx, id)
}

func (s *studentServiceImpl) DeleteAbsence(ctx context.Context, id, absenceID int64) error {
	return s.absences.Delete(ctx, id, absenceID)
}
