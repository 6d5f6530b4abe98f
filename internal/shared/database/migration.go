package database

import (
	"fmt"
	"log/slog"

	"github.com/darregistry/member-registry/go-api-server/internal/config"
	"github.com/darregistry/member-registry/go-api-server/internal/model"

	"gorm.io/gorm"
)

// Migrate executes database migration based on configuration
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if !cfg.Database.IsAutoMigrate {
		slog.Info("database migration disabled",
			"auto_migrate", false, "env", cfg.App.Env,
		)
		return nil
	}

	slog.Warn("database migration started - all tables will be dropped and recreated",
		"auto_migrate", true, "env", cfg.App.Env,
	)

	// Safety check: prevent accidental data loss in production
	if cfg.IsProduction() {
		return fmt.Errorf("DB_AUTO_MIGRATE=true is not allowed in production")
	}

	// Step 1: Drop all tables
	slog.Info("dropping existing tables")
	if err := dropAll(db); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	// Step 2: Create tables
	slog.Info("creating tables")
	if err := RunAutoMigrate(db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	slog.Info("migration completed")
	return nil
}

// dropAll drops tables in reverse dependency order
func dropAll(db *gorm.DB) error {
	models := model.All()
	migrator := db.Migrator()

	for i := len(models) - 1; i >= 0; i-- {
		m := models[i]
		if !migrator.HasTable(m) {
			continue
		}
		if err := migrator.DropTable(m); err != nil {
			return fmt.Errorf("drop %T: %w", m, err)
		}
		slog.Debug("table dropped", "model", fmt.Sprintf("%T", m))
	}

	return nil
}

// RunAutoMigrate creates tables based on model definitions
func RunAutoMigrate(db *gorm.DB) error {
	// Referenced tables are created first
	for _, m := range model.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
		slog.Debug("table created", "model", fmt.Sprintf("%T", m))
	}

	return nil
}
