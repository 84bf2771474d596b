package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Every field can be overridden by the
// environment variable named in its env tag.
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
		// MaxUploadMB bounds photo, frame and workbook uploads.
		MaxUploadMB int `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		// CreateDatabase issues CREATE DATABASE IF NOT EXISTS before connecting.
		CreateDatabase bool `yaml:"create_database" env:"DB_CREATE_DATABASE"`
		SeedSampleData bool `yaml:"seed_sample_data" env:"DB_SEED_SAMPLE_DATA"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Admin struct {
		Username string `yaml:"username" env:"ADMIN_USERNAME"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Face struct {
		ServiceURL string  `yaml:"service_url" env:"FACE_SERVICE_URL"`
		Timeout    string  `yaml:"timeout" env:"FACE_TIMEOUT"`
		Tolerance  float64 `yaml:"tolerance" env:"FACE_TOLERANCE"`
		// Workers bounds concurrent gallery encodings.
		Workers        int    `yaml:"workers" env:"FACE_WORKERS"`
		SessionIdleTTL string `yaml:"session_idle_ttl" env:"FACE_SESSION_IDLE_TTL"`
		// FrameInterval is the minimum spacing of processed frames per session.
		FrameInterval string `yaml:"frame_interval" env:"FACE_FRAME_INTERVAL"`
	} `yaml:"face"`

	Storage struct {
		Path           string `yaml:"path" env:"STORAGE_PATH"`
		KeepScanFrames bool   `yaml:"keep_scan_frames" env:"STORAGE_KEEP_SCAN_FRAMES"`
	} `yaml:"storage"`

	Photo struct {
		MaxDimension int `yaml:"max_dimension" env:"PHOTO_MAX_DIMENSION"`
		JPEGQuality  int `yaml:"jpeg_quality" env:"PHOTO_JPEG_QUALITY"`
	} `yaml:"photo"`

	Scheduler struct {
		AbsenceSweepEnabled bool   `yaml:"absence_sweep_enabled" env:"SCHEDULER_ABSENCE_SWEEP_ENABLED"`
		AbsenceSweepSpec    string `yaml:"absence_sweep_spec" env:"SCHEDULER_ABSENCE_SWEEP_SPEC"`
	} `yaml:"scheduler"`
}

// LoadConfig reads .env (if present), then the YAML file (if present), then
// applies environment overrides and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.MaxUploadMB = 16

	config.Database.Host = "localhost"
	config.Database.Port = "3307"
	config.Database.User = "root"
	config.Database.DBName = "records"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.CreateDatabase = true
	config.Database.SeedSampleData = true

	config.JWT.AccessTokenExpiration = "12h"
	config.JWT.Issuer = "registrar"

	config.Admin.Username = "admin"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Face.Timeout = "10s"
	config.Face.Tolerance = 0.6
	config.Face.Workers = 4
	config.Face.SessionIdleTTL = "30m"
	config.Face.FrameInterval = "250ms"

	config.Storage.Path = "uploads"

	config.Photo.MaxDimension = 600
	config.Photo.JPEGQuality = 90

	config.Scheduler.AbsenceSweepSpec = "0 22 * * *"
}

func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"database conn_max_lifetime":  config.Database.ConnMaxLifetime,
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"face timeout":                config.Face.Timeout,
		"face session idle ttl":       config.Face.SessionIdleTTL,
		"face frame interval":         config.Face.FrameInterval,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if config.Face.Tolerance <= 0 || config.Face.Tolerance > 1 {
		return fmt.Errorf("face tolerance must be in (0, 1], got %v", config.Face.Tolerance)
	}
	if config.Photo.JPEGQuality < 1 || config.Photo.JPEGQuality > 100 {
		return fmt.Errorf("photo jpeg quality must be in [1, 100], got %d", config.Photo.JPEGQuality)
	}

	return nil
}

// MySQLDSN returns the driver DSN for the configured database. When withDB is
// false the database name is omitted, which is needed to create it.
func (c *Config) MySQLDSN(withDB bool) string {
	cfg := mysql.NewConfig()
	cfg.User = c.Database.User
	cfg.Passwd = c.Database.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Database.Host + ":" + c.Database.Port
	if withDB {
		cfg.DBName = c.Database.DBName
	}
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	cfg.Collation = "utf8mb4_unicode_ci"
	// Updates report matched rows, so a no-op rename is not a 404
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// IsProduction reports whether gin should run in release mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// Duration parses a validated duration field, falling back to def.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
