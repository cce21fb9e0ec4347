package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"product-catalog/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations executes all pending migrations embedded in the binary
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	return runMigrations(db, migrations.FS, ".", logger)
}

func runMigrations(db *sql.DB, fsys fs.FS, dir string, logger *zap.Logger) error {
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", dir))

	if err := goose.Up(db, dir); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int64("version", version))
	return nil
}

// GetMigrationStatus prints the status of every embedded migration
func GetMigrationStatus(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.Status(db, ".")
}
