package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yigit/registrar/internal/pkg/logger"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the migrations compiled into the binary
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator applies versioned SQL files once each
type Migrator struct {
	db    *sqlx.DB
	files fs.FS
}

// NewMigrator creates a migrator reading .sql files from files
func NewMigrator(db *sqlx.DB, files fs.FS) *Migrator {
	return &Migrator{db: db, files: files}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []string
	if err := m.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// Pending returns the file names that have not been applied yet, in order
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	names, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	var pending []string
	for _, name := range names {
		if !applied[Version(name)] {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// Up applies every pending migration and returns the applied file names
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range pending {
		if err := m.apply(ctx, name); err != nil {
			return nil, err
		}
	}
	if len(pending) == 0 {
		logger.Info().Msg("Database schema is up to date")
	}
	return pending, nil
}

// apply runs each statement of a file, then records the version. MySQL
// commits DDL implicitly, so statements are written to be idempotent.
func (m *Migrator) apply(ctx context.Context, name string) error {
	content, err := fs.ReadFile(m.files, name)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", name, err)
	}

	for i, stmt := range SplitStatements(string(content)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %s statement %d failed: %w", name, i+1, err)
		}
	}

	if _, err := m.db.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		Version(name), time.Now()); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	logger.Info().Str("file", name).Msg("Migration applied")
	return nil
}

// Version extracts the numeric prefix of a migration file name
// ("001_init.sql" => "001").
func Version(name string) string {
	return strings.SplitN(path.Base(name), "_", 2)[0]
}

// SplitStatements splits a SQL script on semicolons that end a line.
// Line comments are dropped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			stmts = append(stmts, stmt)
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
