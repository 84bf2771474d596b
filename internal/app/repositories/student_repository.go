package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/db"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// StudentRepository handles database operations for students
type StudentRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db, sb: statementBuilder()}
}

var studentColumns = []string{
	"s.id", "COALESCE(s.name, '') AS name", "COALESCE(s.sex, '') AS sex", "COALESCE(s.score, 0) AS score",
	"s.email", "s.phone", "s.department_id", "s.major_id", "s.class_id", "s.academic_year_id",
	"(s.photo IS NOT NULL) AS has_photo",
	"d.name AS department_name", "m.name AS major_name", "c.name AS class_name", "ay.name AS academic_year_name",
}

func (r *StudentRepository) selectStudents(columns ...string) squirrel.SelectBuilder {
	return r.sb.Select(columns...).
		From("mystudent s").
		LeftJoin("department d ON d.id = s.department_id").
		LeftJoin("major m ON m.id = s.major_id").
		LeftJoin("class c ON c.id = s.class_id").
		LeftJoin("academic_year ay ON ay.id = s.academic_year_id")
}

func applyStudentFilter(q squirrel.SelectBuilder, f models.StudentFilter) squirrel.SelectBuilder {
	if f.ClassID != nil {
		q = q.Where(squirrel.Eq{"s.class_id": *f.ClassID})
	}
	if f.AcademicYearID != nil {
		q = q.Where(squirrel.Eq{"s.academic_year_id": *f.AcademicYearID})
	}
	return q
}

// List returns students ordered by name. A zero Limit returns every row.
func (r *StudentRepository) List(ctx context.Context, f models.StudentFilter) ([]models.Student, error) {
	q := applyStudentFilter(r.selectStudents(studentColumns...), f).OrderBy("s.name", "s.id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	query, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		logger.Error().Err(err).Msg("Error listing students")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return students, nil
}

// Count returns the number of students matching the filter
func (r *StudentRepository) Count(ctx context.Context, f models.StudentFilter) (int64, error) {
	query, args, err := applyStudentFilter(r.sb.Select("COUNT(*)").From("mystudent s"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return total, nil
}

// GetByID retrieves a student with related names
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query, args, err := r.selectStudents(studentColumns...).Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentId", id).Msg("Error fetching student")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return &student, nil
}

// Search matches term against the student, class, department, major and
// academic year names.
func (r *StudentRepository) Search(ctx context.Context, term string) ([]models.Student, error) {
	pattern := "%" + term + "%"
	query, args, err := r.selectStudents(studentColumns...).
		Where(squirrel.Or{
			squirrel.Like{"s.name": pattern},
			squirrel.Like{"c.name": pattern},
			squirrel.Like{"d.name": pattern},
			squirrel.Like{"m.name": pattern},
			squirrel.Like{"ay.name": pattern},
		}).
		OrderBy("d.name", "m.name", "s.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search students query: %w", err)
	}

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		logger.Error().Err(err).Str("term", term).Msg("Error searching students")
		return nil, fmt.Errorf("error searching students: %w", err)
	}
	return students, nil
}

func insertStudent(sb squirrel.StatementBuilderType, in models.StudentInput) squirrel.InsertBuilder {
	return sb.Insert("mystudent").
		Columns("name", "sex", "score", "email", "phone", "department_id", "major_id", "class_id", "academic_year_id").
		Values(in.Name, in.Sex, in.Score, in.Email, in.Phone, in.DepartmentID, in.MajorID, in.ClassID, in.AcademicYearID)
}

// Create inserts a student and returns the new id
func (r *StudentRepository) Create(ctx context.Context, in models.StudentInput) (int64, error) {
	query, args, err := insertStudent(r.sb, in).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapStudentWriteError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new student id: %w", err)
	}
	logger.Info().Int64("studentId", id).Str("name", in.Name).Msg("Student created")
	return id, nil
}

// CreateMany inserts all students in one transaction
func (r *StudentRepository) CreateMany(ctx context.Context, inputs []models.StudentInput) (int, error) {
	inserted := 0
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		for _, in := range inputs {
			query, args, err := insertStudent(r.sb, in).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build import student query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return mapStudentWriteError(err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ImportIntoGroup inserts all students into the named class and academic
// year. Missing class and year rows are created in the same transaction, so
// a failed insert leaves neither behind.
func (r *StudentRepository) ImportIntoGroup(ctx context.Context, className, yearName string, inputs []models.StudentInput) (int, error) {
	inserted := 0
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		classID, err := r.ensureNameTx(ctx, tx, models.TableClass, className)
		if err != nil {
			return err
		}
		yearID, err := r.ensureNameTx(ctx, tx, models.TableAcademicYear, yearName)
		if err != nil {
			return err
		}
		for _, in := range inputs {
			in.ClassID, in.AcademicYearID = &classID, &yearID
			query, args, err := insertStudent(r.sb, in).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build import student query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return mapStudentWriteError(err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *StudentRepository) ensureNameTx(ctx context.Context, tx *sqlx.Tx, table models.LookupTable, name string) (int64, error) {
	query, args, err := r.sb.Insert(string(table)).Options("IGNORE").Columns("name").Values(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("error ensuring %s %q: %w", table, name, err)
	}

	query, args, err = r.sb.Select("id").From(string(table)).Where(squirrel.Eq{"name": name}).Limit(1).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build get query: %w", err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("error retrieving %s %q: %w", table, name, err)
	}
	return id, nil
}

// Update rewrites every writable column of a student
func (r *StudentRepository) Update(ctx context.Context, id int64, in models.StudentInput) error {
	query, args, err := r.sb.Update("mystudent").
		SetMap(map[string]interface{}{
			"name":             in.Name,
			"sex":              in.Sex,
			"score":            in.Score,
			"email":            in.Email,
			"phone":            in.Phone,
			"department_id":    in.DepartmentID,
			"major_id":         in.MajorID,
			"class_id":         in.ClassID,
			"academic_year_id": in.AcademicYearID,
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapStudentWriteError(err)
	}
	return expectOne(res, apperrors.ErrStudentNotFound)
}

// Delete removes one student
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("mystudent").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentId", id).Msg("Error deleting student")
		return fmt.Errorf("error deleting student: %w", err)
	}
	return expectOne(res, apperrors.ErrStudentNotFound)
}

// GetPhoto returns the stored JPEG of a student
func (r *StudentRepository) GetPhoto(ctx context.Context, id int64) ([]byte, error) {
	query, args, err := r.sb.Select("photo").From("mystudent").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get photo query: %w", err)
	}

	var photo []byte
	if err := r.db.GetContext(ctx, &photo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving photo: %w", err)
	}
	if len(photo) == 0 {
		return nil, apperrors.ErrPhotoNotFound
	}
	return photo, nil
}

// SetPhoto stores a photo; nil clears it
func (r *StudentRepository) SetPhoto(ctx context.Context, id int64, photo []byte) error {
	var value interface{}
	if photo != nil {
		value = photo
	}
	query, args, err := r.sb.Update("mystudent").Set("photo", value).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set photo query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentId", id).Msg("Error saving photo")
		return fmt.Errorf("error saving photo: %w", err)
	}
	return expectOne(res, apperrors.ErrStudentNotFound)
}

// Roster lists the students of a class ordered by name. A nil academic year
// matches every year.
func (r *StudentRepository) Roster(ctx context.Context, classID int64, academicYearID *int64) ([]models.RosterEntry, error) {
	q := r.sb.Select("id", "COALESCE(name, '') AS name", "COALESCE(sex, '') AS sex").
		From("mystudent").
		Where(squirrel.Eq{"class_id": classID}).
		OrderBy("name", "id")
	if academicYearID != nil {
		q = q.Where(squirrel.Eq{"academic_year_id": *academicYearID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}

	roster := []models.RosterEntry{}
	if err := r.db.SelectContext(ctx, &roster, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", classID).Msg("Error loading roster")
		return nil, fmt.Errorf("error loading roster: %w", err)
	}
	return roster, nil
}

// FaceSamples returns the photos of every student of the class that has one
func (r *StudentRepository) FaceSamples(ctx context.Context, classID int64) ([]models.FaceSample, error) {
	query, args, err := r.sb.Select("id", "COALESCE(name, '') AS name", "photo").
		From("mystudent").
		Where(squirrel.Eq{"class_id": classID}).
		Where("photo IS NOT NULL").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build face samples query: %w", err)
	}

	samples := []models.FaceSample{}
	if err := r.db.SelectContext(ctx, &samples, query, args...); err != nil {
		logger.Error().Err(err).Int64("classId", classID).Msg("Error loading face samples")
		return nil, fmt.Errorf("error loading student photos: %w", err)
	}
	return samples, nil
}

func mapStudentWriteError(err error) error {
	if dberrors.IsForeignKeyViolation(err) {
		return apperrors.ErrReferencedEntity
	}
	logger.Error().Err(err).Msg("Error writing student")
	return fmt.Errorf("error saving student: %w", err)
}
