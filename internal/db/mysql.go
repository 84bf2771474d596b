package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/yigit/registrar/internal/config"
	"github.com/yigit/registrar/internal/pkg/logger"
)

// MySQLDB wraps the sqlx connection pool
type MySQLDB struct {
	DB *sqlx.DB
}

// NewMySQLDB creates the database (when configured) and opens a pool to it
func NewMySQLDB(cfg *config.Config) (*MySQLDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Database.CreateDatabase {
		if err := createDatabase(ctx, cfg); err != nil {
			return nil, err
		}
	}

	conn, err := sqlx.ConnectContext(ctx, "mysql", cfg.MySQLDSN(true))
	if err != nil {
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	conn.SetConnMaxLifetime(config.Duration(cfg.Database.ConnMaxLifetime, time.Hour))

	return &MySQLDB{DB: conn}, nil
}

func createDatabase(ctx context.Context, cfg *config.Config) error {
	server, err := sqlx.ConnectContext(ctx, "mysql", cfg.MySQLDSN(false))
	if err != nil {
		return fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer server.Close()

	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", cfg.Database.DBName)
	if _, err := server.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create database %s: %w", cfg.Database.DBName, err)
	}
	return nil
}

// Close closes the pool
func (db *MySQLDB) Close() {
	if db.DB != nil {
		if err := db.DB.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing database pool")
		}
	}
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sqlx.Tx) error

// WithTransaction runs fn within a transaction on conn
func WithTransaction(ctx context.Context, conn *sqlx.DB, fn TransactionFn) (err error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
