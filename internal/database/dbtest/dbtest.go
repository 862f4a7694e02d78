// Package dbtest runs a throwaway postgres for DB-backed test suites.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/database"
)

const image = "postgres:16-alpine"

// Database is a migrated postgres container plus a gorm handle on it.
type Database struct {
	DB        *gorm.DB
	container *postgres.PostgresContainer
}

// Run starts postgres and migrates the schema. Tests are skipped when no
// container provider is reachable.
func Run(t *testing.T) *Database {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("arena"),
		postgres.WithUsername("arena"),
		postgres.WithPassword("arena"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		t.Fatalf("connection string: %v", err)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		t.Fatalf("open gorm: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		t.Fatalf("migrate: %v", err)
	}

	return &Database{DB: db, container: ctr}
}

// Stop closes the pool and removes the container.
func (d *Database) Stop() error {
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return testcontainers.TerminateContainer(d.container)
}

// Clear empties every table between tests.
func (d *Database) Clear() error {
	err := d.DB.Exec("TRUNCATE TABLE votes, comments, solutions, challenges, user_stats, users").Error
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
