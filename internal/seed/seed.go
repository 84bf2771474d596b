package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/app/models"
	appRepos "github.com/yigit/registrar/internal/app/repositories"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

var (
	departments = []string{
		"Computer Science",
		"Information Technology",
		"Electrical Engineering",
		"Business Administration",
	}

	subjects = []models.Subject{
		{Name: "Mathematics", Code: "MATH101", Description: "Basic mathematics"},
		{Name: "Programming", Code: "CS102", Description: "Introduction to programming"},
		{Name: "Networking", Code: "CS203", Description: "Computer networks"},
		{Name: "Database", Code: "CS204", Description: "Relational databases"},
		{Name: "Computer Applications", Code: "CA101", Description: "Introduction to computer applications"},
	}

	classes = []string{
		"M1", "M2", "M3", "M4", "M5", "M6", "M7",
		"L1", "L2", "L3", "L4", "L5", "L6", "L7",
		"S1", "S2",
	}

	academicYears = []string{"2023-2024", "2024-2025", "2025-2026"}

	// major -> department
	majors = [][2]string{
		{"Software Engineering", "Computer Science"},
		{"Artificial Intelligence", "Computer Science"},
		{"Cybersecurity", "Computer Science"},
		{"Business Analytics", "Business Administration"},
	}

	schedules = []struct {
		class, subject, day, start, end string
	}{
		{"M1", "Programming", "Monday", "09:00", "10:30"},
		{"M2", "Database", "Tuesday", "10:00", "11:30"},
		{"L3", "Mathematics", "Wednesday", "13:00", "14:00"},
		{"S1", "Networking", "Thursday", "15:00", "16:30"},
		{"M5", "Computer Applications", "Thursday", "07:00", "09:00"},
	}

	students = []struct {
		name, sex           string
		score               float64
		email, phone        string
		department, major   string
		class, academicYear string
	}{
		{"Alice Smith", "Female", 85.5, "alice.s@example.com", "123-456-7890", "Computer Science", "Software Engineering", "M1", "2024-2025"},
		{"Bob Johnson", "Male", 72.0, "bob.j@example.com", "098-765-4321", "Computer Science", "Artificial Intelligence", "M2", "2024-2025"},
		{"Charlie Brown", "Male", 91.2, "charlie.b@example.com", "111-222-3333", "Business Administration", "Business Analytics", "L3", "2023-2024"},
	}
)

// CreateSampleData fills an empty database with demonstration rows. It does
// nothing once any department exists and reports whether it inserted.
func CreateSampleData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) (bool, error) {
	existing, err := repos.LookupRepository.List(ctx, models.TableDepartment)
	if err != nil {
		return false, fmt.Errorf("failed to check existing departments: %w", err)
	}
	if len(existing) > 0 {
		lgr.Debug().Int("departments", len(existing)).Msg("Database already has data, skipping sample data")
		return false, nil
	}

	lgr.Info().Msg("Creating sample data...")
	var finalErr error

	ids := map[models.LookupTable]map[string]int64{
		models.TableDepartment:   {},
		models.TableClass:        {},
		models.TableAcademicYear: {},
	}
	ensure := func(table models.LookupTable, names []string) {
		for _, name := range names {
			id, err := repos.LookupRepository.EnsureName(ctx, table, name)
			if err != nil {
				lgr.Error().Err(err).Str("table", string(table)).Str("name", name).Msg("Error creating lookup row")
				finalErr = errors.Join(finalErr, err)
				continue
			}
			ids[table][name] = id
		}
	}
	ensure(models.TableDepartment, departments)
	ensure(models.TableClass, classes)
	ensure(models.TableAcademicYear, academicYears)

	subjectIDs := map[string]int64{}
	for _, s := range subjects {
		id, err := repos.SubjectRepository.Create(ctx, s)
		if err != nil && !errors.Is(err, apperrors.ErrNameAlreadyExists) {
			lgr.Error().Err(err).Str("subject", s.Name).Msg("Error creating subject")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		subjectIDs[s.Name] = id
	}

	majorIDs := map[string]int64{}
	for _, m := range majors {
		deptID, ok := ids[models.TableDepartment][m[1]]
		if !ok {
			continue
		}
		id, err := repos.MajorRepository.Create(ctx, m[0], deptID)
		if err != nil {
			lgr.Error().Err(err).Str("major", m[0]).Msg("Error creating major")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		majorIDs[m[0]] = id
	}

	for _, s := range schedules {
		classID, subjectID := ids[models.TableClass][s.class], subjectIDs[s.subject]
		if classID == 0 || subjectID == 0 {
			continue
		}
		_, err := repos.ScheduleRepository.Create(ctx, models.ScheduleInput{
			ClassID:   classID,
			SubjectID: subjectID,
			DayOfWeek: s.day,
			StartTime: s.start,
			EndTime:   s.end,
		})
		if err != nil {
			lgr.Error().Err(err).Str("class", s.class).Str("subject", s.subject).Msg("Error creating schedule")
			finalErr = errors.Join(finalErr, err)
		}
	}

	inputs := make([]models.StudentInput, 0, len(students))
	for _, s := range students {
		email, phone := s.email, s.phone
		inputs = append(inputs, models.StudentInput{
			Name:           s.name,
			Sex:            s.sex,
			Score:          s.score,
			Email:          &email,
			Phone:          &phone,
			DepartmentID:   idOrNil(ids[models.TableDepartment][s.department]),
			MajorID:        idOrNil(majorIDs[s.major]),
			ClassID:        idOrNil(ids[models.TableClass][s.class]),
			AcademicYearID: idOrNil(ids[models.TableAcademicYear][s.academicYear]),
		})
	}
	if _, err := repos.StudentRepository.CreateMany(ctx, inputs); err != nil {
		lgr.Error().Err(err).Msg("Error creating sample students")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Sample data creation finished.")
	return true, finalErr
}

func idOrNil(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
