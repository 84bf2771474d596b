package seed

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appRepos "github.com/yigit/registrar/internal/app/repositories"
)

func TestCreateSampleData_SkipsWhenDepartmentsExist(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT id, name FROM department").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Computer Science"))

	repos := appRepos.NewRepositories(sqlx.NewDb(conn, "mysql"))
	inserted, err := CreateSampleData(context.Background(), repos, zerolog.Nop())

	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSampleDataIsConsistent(t *testing.T) {
	depts := map[string]bool{}
	for _, d := range departments {
		depts[d] = true
	}
	classSet := map[string]bool{}
	for _, c := range classes {
		classSet[c] = true
	}
	subjectSet := map[string]bool{}
	for _, s := range subjects {
		subjectSet[s.Name] = true
	}
	majorSet := map[string]bool{}
	for _, m := range majors {
		assert.True(t, depts[m[1]], "major %s has unknown department", m[0])
		majorSet[m[0]] = true
	}

	for _, s := range schedules {
		assert.True(t, classSet[s.class], s.class)
		assert.True(t, subjectSet[s.subject], s.subject)
		assert.Less(t, s.start, s.end)
	}
	for _, s := range students {
		assert.True(t, depts[s.department], s.name)
		assert.True(t, majorSet[s.major], s.name)
		assert.True(t, classSet[s.class], s.name)
		assert.Contains(t, academicYears, s.academicYear)
	}
}
