package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/model"
)

// Init opens the configured database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("running database migrations")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableTrigramIndexes {
		if cfg.Driver != "postgres" {
			log.Warn().Str("driver", cfg.Driver).Msg("trigram indexes need postgres, skipping")
		} else if err := applyTrigramDDL(db); err != nil {
			log.Warn().Err(err).Msg("failed to apply trigram indexes, search falls back to sequential scans")
		}
	}

	log.Info().Str("driver", cfg.Driver).Msg("database initialization complete")
	return db, nil
}

// Open connects to the database without migrating it.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	if cfg.Driver == "sqlite" {
		// One connection keeps in-memory databases alive and avoids SQLITE_BUSY.
		maxOpen, maxIdle = 1, 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Line{},
		&model.Machine{},
		&model.Part{},
		&model.Checkweigher{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// applyTrigramDDL adds pg_trgm GIN indexes on the lower-cased search columns.
func applyTrigramDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS pg_trgm;",
		"CREATE INDEX IF NOT EXISTS idx_lines_name_trgm ON lines USING GIN (LOWER(name) gin_trgm_ops);",
		"CREATE INDEX IF NOT EXISTS idx_machines_name_trgm ON machines USING GIN (LOWER(name) gin_trgm_ops);",
		"CREATE INDEX IF NOT EXISTS idx_parts_name_trgm ON parts USING GIN (LOWER(name) gin_trgm_ops);",
		"CREATE INDEX IF NOT EXISTS idx_parts_part_number_trgm ON parts USING GIN (LOWER(part_number) gin_trgm_ops);",
		"CREATE INDEX IF NOT EXISTS idx_parts_location_trgm ON parts USING GIN (LOWER(location) gin_trgm_ops);",
		"CREATE INDEX IF NOT EXISTS idx_checkweighers_name_trgm ON checkweighers USING GIN (LOWER(name) gin_trgm_ops);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
