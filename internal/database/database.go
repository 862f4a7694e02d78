package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/config"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/logging"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

const healthTimeout = 5 * time.Second

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db     *gorm.DB
	name   string
	logger *slog.Logger
}

// New opens the connection pool. The caller owns the returned Service and
// must Close it at shutdown.
func New(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (Service, error) {
	gormLogger := logger.New(
		logging.StdLogger(log, slog.LevelDebug),
		logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var db *gorm.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
				Logger: gormLogger,
				NowFunc: func() time.Time {
					return time.Now().UTC()
				},
			})
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(max(cfg.ConnectAttempts, 1)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("database not ready, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Info("database connected", "host", cfg.Host, "name", cfg.Name)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &service{db: db, name: cfg.Name, logger: log}, nil
}

// Wrap exposes an already opened gorm handle as a Service (tests, tools).
func Wrap(db *gorm.DB, log *slog.Logger) Service {
	return &service{db: db, name: db.Migrator().CurrentDatabase(), logger: log}
}

// Migrate creates or updates every table the core reads or writes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Challenge{},
		&models.Solution{},
		&models.Comment{},
		&models.Vote{},
		&models.UserStats{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	health := map[string]string{"database": s.name}
	down := func(err error) map[string]string {
		s.logger.Warn("database health check failed", "name", s.name, "error", err)
		health["status"] = "down"
		health["error"] = err.Error()
		return health
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return down(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return down(err)
	}

	pool := sqlDB.Stats()
	health["status"] = "up"
	health["open_connections"] = strconv.Itoa(pool.OpenConnections)
	health["in_use"] = strconv.Itoa(pool.InUse)
	health["idle"] = strconv.Itoa(pool.Idle)
	health["wait_count"] = strconv.FormatInt(pool.WaitCount, 10)
	health["max_open_connections"] = strconv.Itoa(pool.MaxOpenConnections)
	return health
}

// Close closes the database connection.
func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	s.logger.Info("disconnected from database", "name", s.name)
	return sqlDB.Close()
}
