package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/registrar/internal/app/controllers"
	appMigrations "github.com/yigit/registrar/internal/app/migrations"
	appRepos "github.com/yigit/registrar/internal/app/repositories"
	appRoutes "github.com/yigit/registrar/internal/app/routes"
	appServices "github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/config"
	"github.com/yigit/registrar/internal/db"
	"github.com/yigit/registrar/internal/jobs"
	appMiddleware "github.com/yigit/registrar/internal/middleware"
	pkgAuth "github.com/yigit/registrar/internal/pkg/auth"
	"github.com/yigit/registrar/internal/pkg/facerec"
	"github.com/yigit/registrar/internal/pkg/filestorage"
	"github.com/yigit/registrar/internal/pkg/logger"
	"github.com/yigit/registrar/internal/pkg/photo"
	"github.com/yigit/registrar/internal/pkg/websocket"
	"github.com/yigit/registrar/internal/seed"
)

// DefaultConfigPath is read relative to the working directory
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	AuthService       *appServices.AuthService
	LookupService     appServices.LookupService
	MajorService      appServices.MajorService
	SubjectService    appServices.SubjectService
	ScheduleService   appServices.ScheduleService
	StudentService    appServices.StudentService
	AttendanceService appServices.AttendanceService
	ScanService       appServices.ScanService
	TransferService   appServices.TransferService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware

	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	FileStorage    *filestorage.LocalStorage
	AbsenceSweeper *jobs.AbsenceSweeper
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenDatabase connects and pings the configured database.
func OpenDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.MySQLDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewMySQLDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.DB.PingContext(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// Migrate applies pending embedded migrations.
func Migrate(ctx context.Context, database *db.MySQLDB, lgr zerolog.Logger) ([]string, error) {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(database.DB, appMigrations.Files()).Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Strs("applied", applied).Msg("Database migrations successfully applied.")
	return applied, nil
}

// SetupDatabase connects, migrates and optionally seeds sample data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.MySQLDB, error) {
	database, err := OpenDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if _, err := Migrate(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if cfg.Database.SeedSampleData {
		if _, err := seed.CreateSampleData(ctx, appRepos.NewRepositories(database.DB), lgr); err != nil {
			// Sample data is optional; keep serving
			lgr.Error().Err(err).Msg("Failed to create sample data, proceeding anyway...")
		}
	}

	return database, nil
}

func newEncoder(cfg *config.Config, lgr zerolog.Logger) facerec.Encoder {
	if cfg.Face.ServiceURL == "" {
		lgr.Warn().Msg("No face encoder configured; scan endpoints will answer 503")
		return facerec.UnavailableEncoder{}
	}
	return facerec.NewHTTPEncoder(cfg.Face.ServiceURL, config.Duration(cfg.Face.Timeout, 10*time.Second))
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.MySQLDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.DB)
	repos := deps.Repos

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: config.Duration(cfg.JWT.AccessTokenExpiration, 12*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	deps.AuthService = appServices.NewAuthService(repos.OperatorRepository, deps.JWTService, logger.Component("auth"))
	deps.LookupService = appServices.NewLookupService(repos.LookupRepository)
	deps.MajorService = appServices.NewMajorService(repos.MajorRepository, repos.LookupRepository)
	deps.SubjectService = appServices.NewSubjectService(repos.SubjectRepository)
	deps.ScheduleService = appServices.NewScheduleService(repos.ScheduleRepository, repos.LookupRepository, repos.SubjectRepository)
	deps.StudentService = appServices.NewStudentService(
		repos.StudentRepository,
		repos.ScheduleRepository,
		repos.AbsenceRepository,
		photo.Options{MaxDimension: cfg.Photo.MaxDimension, JPEGQuality: cfg.Photo.JPEGQuality},
	)
	deps.AttendanceService = appServices.NewAttendanceService(
		repos.AttendanceRepository,
		repos.StudentRepository,
		repos.ScheduleRepository,
		repos.LookupRepository,
		repos.SubjectRepository,
	)
	deps.TransferService = appServices.NewTransferService(
		repos.StudentRepository,
		repos.MajorRepository,
		repos.LookupRepository,
		repos.SubjectRepository,
		repos.AttendanceRepository,
	)

	var frameStorage filestorage.FileStorage
	if cfg.Storage.KeepScanFrames {
		frameStorage = deps.FileStorage
	}
	deps.ScanService = appServices.NewScanService(
		appServices.ScanConfig{
			Tolerance:     cfg.Face.Tolerance,
			Workers:       cfg.Face.Workers,
			IdleTTL:       config.Duration(cfg.Face.SessionIdleTTL, 30*time.Minute),
			FrameInterval: config.Duration(cfg.Face.FrameInterval, 250*time.Millisecond),
			KeepFrames:    cfg.Storage.KeepScanFrames,
		},
		appServices.ScanDeps{
			Encoder:    newEncoder(cfg, lgr),
			Students:   repos.StudentRepository,
			Schedules:  repos.ScheduleRepository,
			Attendance: repos.AttendanceRepository,
			Lookups:    repos.LookupRepository,
			Subjects:   repos.SubjectRepository,
			Storage:    frameStorage,
			Publisher:  deps.Hub,
			Logger:     logger.Component("scan"),
		},
	)

	if cfg.Scheduler.AbsenceSweepEnabled {
		deps.AbsenceSweeper, err = jobs.NewAbsenceSweeper(deps.AttendanceService, cfg.Scheduler.AbsenceSweepSpec, logger.Component("jobs"))
		if err != nil {
			return nil, err
		}
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	maxUpload := int64(cfg.Server.MaxUploadMB) << 20
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		Student:    appControllers.NewStudentController(deps.StudentService, maxUpload),
		Lookup:     appControllers.NewLookupController(deps.LookupService),
		Major:      appControllers.NewMajorController(deps.MajorService),
		Subject:    appControllers.NewSubjectController(deps.SubjectService),
		Schedule:   appControllers.NewScheduleController(deps.ScheduleService),
		Attendance: appControllers.NewAttendanceController(deps.AttendanceService, deps.TransferService),
		Scan:       appControllers.NewScanController(deps.ScanService, deps.Hub, maxUpload, logger.Component("scan")),
		Transfer:   appControllers.NewTransferController(deps.TransferService, maxUpload),
	}

	return deps, nil
}

// EnsureAdmin creates the configured admin operator on an empty operator table.
func EnsureAdmin(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	created, err := deps.AuthService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to ensure admin operator: %w", err)
	}
	if created {
		deps.Logger.Info().Str("username", cfg.Admin.Username).Msg("Admin operator created")
	}
	return nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("http")))
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
