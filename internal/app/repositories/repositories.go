package repositories

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Repositories holds all the repository instances
type Repositories struct {
	LookupRepository     *LookupRepository
	MajorRepository      *MajorRepository
	SubjectRepository    *SubjectRepository
	ScheduleRepository   *ScheduleRepository
	StudentRepository    *StudentRepository
	AttendanceRepository *AttendanceRepository
	AbsenceRepository    *AbsenceRepository
	OperatorRepository   *OperatorRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		LookupRepository:     NewLookupRepository(db),
		MajorRepository:      NewMajorRepository(db),
		SubjectRepository:    NewSubjectRepository(db),
		ScheduleRepository:   NewScheduleRepository(db),
		StudentRepository:    NewStudentRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		AbsenceRepository:    NewAbsenceRepository(db),
		OperatorRepository:   NewOperatorRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

// weekdayOrder sorts ENUM day names Monday first
const weekdayOrder = "FIELD(%s, 'Monday', 'Tuesday', 'Wednesday', 'Thursday', 'Friday', 'Saturday', 'Sunday')"

func orderByWeekday(column string) string {
	return fmt.Sprintf(weekdayOrder, column)
}

// expectOne returns notFound when an UPDATE or DELETE matched no row
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
