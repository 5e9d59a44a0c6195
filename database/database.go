package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"signage-panel/config"
	"signage-panel/internal/domain/campaigns"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/slides"
	"signage-panel/internal/domain/users"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB opens the configured store, migrates it and seeds the defaults.
func InitDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db, SeedOptions{
		Groups:        cfg.SeedGroups,
		MasterUser:    cfg.MasterUser,
		MasterPass:    cfg.MasterPass,
		GroupUserPass: cfg.GroupUserPass,
	}); err != nil {
		return nil, err
	}

	logger.Info("database ready", "event", "database_ready", "driver", cfg.DBDriver)
	return db, nil
}

// Open connects to postgres or sqlite. For sqlite the parent directory of the
// file is created and foreign keys are switched on.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	switch driver {
	case config.DriverPostgres:
		db, err := gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil

	case config.DriverSQLite:
		memory := strings.Contains(dsn, ":memory:")
		if !memory {
			if dir := filepath.Dir(sqlitePath(dsn)); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create sqlite dir: %w", err)
				}
			}
		}
		db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite handle: %w", err)
		}
		// sqlite allows a single writer; an in-memory database also lives
		// and dies with its only connection.
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&groups.Group{},
		&users.User{},
		&campaigns.Campaign{},
		&slides.Slide{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	return path
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
