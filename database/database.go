package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stackedwins/config"
	"stackedwins/logger"
	"stackedwins/models"
)

const (
	memoryDSN          = "file::memory:?cache=shared"
	slowQueryThreshold = 200 * time.Millisecond
)

// Init opens the database named by cfg.Database.
// For sqlite, a DSN of "memory" or "" uses a shared in-memory database and
// any other value is a file path whose directory is created if missing.
func Init(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	log = log.Component("Database")
	dsn := cfg.Database.DSN

	gormLog := gormlogger.New(
		zap.NewStdLog(log.SugaredLogger.Desugar()),
		gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormConfig := &gorm.Config{
		Logger:  gormLog,
		NowFunc: func() time.Time { return time.Now().In(cfg.Location()) },
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		log.Info("Initializing PostgreSQL database")
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		if dsn == "memory" || dsn == "" {
			log.Info("Initializing in-memory SQLite database")
			dsn = memoryDSN
		} else {
			log.Info("Initializing file-based SQLite database", "path", dsn)
			if err := ensureDir(dsn); err != nil {
				return nil, err
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Database.Driver, err)
	}

	log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Assessment{},
		&models.GrowthPlan{},
		&models.Milestone{},
		&models.Task{},
		&models.DailyCheckIn{},
		&models.TaskCompletion{},
		&models.ProgressMetrics{},
		&models.JournalEntry{},
		&models.Feedback{},
		&models.CoachChat{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory '%s': %w", dir, err)
	}
	return nil
}
