package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	appMigrations "github.com/yigit/registrar/internal/app/migrations"
	"github.com/yigit/registrar/internal/app/models"
	appRepos "github.com/yigit/registrar/internal/app/repositories"
	appServices "github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/bootstrap"
	"github.com/yigit/registrar/internal/config"
	"github.com/yigit/registrar/internal/pkg/auth"
	"github.com/yigit/registrar/internal/pkg/logger"
	"github.com/yigit/registrar/internal/pkg/photo"
	"github.com/yigit/registrar/internal/seed"
)

type migrator interface {
	Pending(ctx context.Context) ([]string, error)
	Up(ctx context.Context) ([]string, error)
}

type operatorAdmin interface {
	CreateOperator(ctx context.Context, username, password string, role models.Role) (int64, error)
	ListOperators(ctx context.Context) ([]models.Operator, error)
}

// backend is what the commands operate on; tests swap in fakes
type backend struct {
	migrator   migrator
	seed       func(ctx context.Context) (bool, error)
	operators  operatorAdmin
	students   appServices.StudentService
	attendance appServices.AttendanceService
	close      func()
}

func connectBackend(c *cli.Context) (*backend, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return nil, err
	}

	database, err := bootstrap.OpenDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	repos := appRepos.NewRepositories(database.DB)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	return &backend{
		migrator: appMigrations.NewMigrator(database.DB, appMigrations.Files()),
		seed: func(ctx context.Context) (bool, error) {
			return seed.CreateSampleData(ctx, repos, lgr)
		},
		operators: appServices.NewAuthService(repos.OperatorRepository, jwtService, logger.Component("auth")),
		students: appServices.NewStudentService(
			repos.StudentRepository,
			repos.ScheduleRepository,
			repos.AbsenceRepository,
			photo.Options{MaxDimension: cfg.Photo.MaxDimension, JPEGQuality: cfg.Photo.JPEGQuality},
		),
		attendance: appServices.NewAttendanceService(
			repos.AttendanceRepository,
			repos.StudentRepository,
			repos.ScheduleRepository,
			repos.LookupRepository,
			repos.SubjectRepository,
		),
		close: database.Close,
	}, nil
}
