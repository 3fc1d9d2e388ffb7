package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"litverse-be/internal/config"
	"litverse-be/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx, so repositories can run
// inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// driverName maps the configured driver onto a registered database/sql name.
func driverName(driver string) string {
	if driver == "pgx" {
		return "pgx"
	}
	return "postgres"
}

func NewDatabase(cfg *config.Config) (*sqlx.DB, error) {
	return newDatabaseWithDriver(cfg, driverName(cfg.DBDriver))
}

func newDatabaseWithDriver(cfg *config.Config, driver string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

func InitDB(cfg *config.Config) *sqlx.DB {
	db, err := NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Database init failed: %v", err)
	}

	logger.L().Info("database connection established",
		zap.String("driver", driverName(cfg.DBDriver)),
		zap.String("host", cfg.DBHost),
	)
	return db
}

// WithTx runs fn inside a transaction. Any error from fn rolls the transaction
// back and is returned unchanged; otherwise the transaction is committed.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.FromCtx(ctx).Error("rollback failed", zap.Error(rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
