package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.local
jwt:
  secret: s3cret
face:
  tolerance: 0.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, "3307", cfg.Database.Port)
	assert.Equal(t, "records", cfg.Database.DBName)
	assert.Equal(t, 0.5, cfg.Face.Tolerance)
	assert.Equal(t, 600, cfg.Photo.MaxDimension)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("STORAGE_KEEP_SCAN_FRAMES", "true")
	t.Setenv("FACE_WORKERS", "8")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.True(t, cfg.Storage.KeepScanFrames)
	assert.Equal(t, 8, cfg.Face.Workers)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "server:\n  port: \"9000\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret")
	})

	t.Run("bad env integer", func(t *testing.T) {
		t.Setenv("FACE_WORKERS", "many")
		_, err := LoadConfig(writeConfig(t, "jwt:\n  secret: x\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FACE_WORKERS")
	})

	t.Run("tolerance out of range", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "jwt:\n  secret: x\nface:\n  tolerance: 1.5\n"))
		require.Error(t, err)
	})
}

func TestMySQLDSN(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Database.Password = "pw"

	dsn := cfg.MySQLDSN(true)
	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(localhost:3307)/records"))
	assert.Contains(t, dsn, "parseTime=true")

	assert.Contains(t, cfg.MySQLDSN(false), "@tcp(localhost:3307)/?")
}
