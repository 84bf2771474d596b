package services

import (
	"context"
	"time"

	"github.com/yigit/registrar/internal/app/models"
)

// The store interfaces are satisfied by the repositories package and let
// services be tested against in-memory fakes.

// LookupStore persists the name-only tables
type LookupStore interface {
	List(ctx context.Context, table models.LookupTable) ([]models.LookupItem, error)
	GetByID(ctx context.Context, table models.LookupTable, id int64) (*models.LookupItem, error)
	GetByName(ctx context.Context, table models.LookupTable, name string) (*models.LookupItem, error)
	Create(ctx context.Context, table models.LookupTable, name string) (int64, error)
	EnsureName(ctx context.Context, table models.LookupTable, name string) (int64, error)
	Rename(ctx context.Context, table models.LookupTable, id int64, name string) error
	Delete(ctx context.Context, table models.LookupTable, id int64) error
}

// MajorStore persists majors
type MajorStore interface {
	List(ctx context.Context, departmentID *int64) ([]models.Major, error)
	GetByID(ctx context.Context, id int64) (*models.Major, error)
	GetByName(ctx context.Context, name string) (*models.Major, error)
	ExistsInDepartment(ctx context.Context, name string, departmentID, excludeID int64) (bool, error)
	Create(ctx context.Context, name string, departmentID int64) (int64, error)
	Update(ctx context.Context, id int64, name string, departmentID int64) error
	Delete(ctx context.Context, id int64) error
}

// SubjectStore persists subjects
type SubjectStore interface {
	List(ctx context.Context) ([]models.Subject, error)
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, s models.Subject) (int64, error)
	Update(ctx context.Context, s models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// ScheduleStore persists class schedules
type ScheduleStore interface {
	Search(ctx context.Context, f models.ScheduleFilter) ([]models.Schedule, error)
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	HasConflict(ctx context.Context, in models.ScheduleInput, excludeID int64) (bool, error)
	Create(ctx context.Context, in models.ScheduleInput) (int64, error)
	Update(ctx context.Context, id int64, in models.ScheduleInput) error
	Delete(ctx context.Context, id int64) error
	ListForClass(ctx context.Context, classID int64) ([]models.StudentScheduleEntry, error)
	IsScheduled(ctx context.Context, classID, subjectID int64, day string) (bool, error)
	ScheduledOn(ctx context.Context, day string) ([]models.ScheduledPair, error)
}

// StudentStore persists students and their photos
type StudentStore interface {
	List(ctx context.Context, f models.StudentFilter) ([]models.Student, error)
	Count(ctx context.Context, f models.StudentFilter) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Search(ctx context.Context, term string) ([]models.Student, error)
	Create(ctx context.Context, in models.StudentInput) (int64, error)
	CreateMany(ctx context.Context, inputs []models.StudentInput) (int, error)
	ImportIntoGroup(ctx context.Context, className, yearName string, inputs []models.StudentInput) (int, error)
	Update(ctx context.Context, id int64, in models.StudentInput) error
	Delete(ctx context.Context, id int64) error
	GetPhoto(ctx context.Context, id int64) ([]byte, error)
	SetPhoto(ctx context.Context, id int64, photo []byte) error
	Roster(ctx context.Context, classID int64, academicYearID *int64) ([]models.RosterEntry, error)
	FaceSamples(ctx context.Context, classID int64) ([]models.FaceSample, error)
}

// AttendanceStore persists attendance rows
type AttendanceStore interface {
	Upsert(ctx context.Context, a models.Attendance) error
	UpsertMany(ctx context.Context, rows []models.Attendance) (int, error)
	InsertIfAbsent(ctx context.Context, a models.Attendance) (bool, error)
	Report(ctx context.Context, classID, subjectID int64, from, to time.Time) ([]models.AttendanceReportRow, error)
	DailyLog(ctx context.Context, date time.Time, classID int64, academicYearID *int64, subjectID int64) ([]models.DailyLogRow, error)
	Marks(ctx context.Context, classID, academicYearID, subjectID int64) ([]models.AttendanceMark, error)
	SweepAbsent(ctx context.Context, classID, subjectID int64, date time.Time) (int64, error)
}

// AbsenceStore persists dated absences
type AbsenceStore interface {
	Create(ctx context.Context, studentID int64, date time.Time, reason *string) (int64, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Absence, error)
	Delete(ctx context.Context, studentID, id int64) error
}

// OperatorStore persists operators
type OperatorStore interface {
	Create(ctx context.Context, username, passwordHash string, role models.Role) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	List(ctx context.Context) ([]models.Operator, error)
	Count(ctx context.Context) (int64, error)
}
