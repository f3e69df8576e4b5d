package database

import (
	"context"
	"fmt"
	"log/slog"

	"lifewood/internal/config"
	"lifewood/internal/middleware"

	"gorm.io/gorm"
)

// Values of DB_SCHEMA_MODE. Hybrid (the default) runs the SQL migrations and,
// outside production, AutoMigrate on top.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema does for a configuration.
type SchemaPlan struct {
	Mode        string
	SQL         bool
	AutoMigrate bool
}

// SchemaStatus is a SchemaPlan plus the migration history.
type SchemaStatus struct {
	SchemaPlan
	Environment string
	Applied     []MigrationLog
	Pending     []Migration
}

// PlanSchema decides how the schema is built. SQLite is always built from
// the models because the SQL files use PostgreSQL syntax.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: cfg.DBSchemaMode}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}

	switch plan.Mode {
	case SchemaModeHybrid, SchemaModeSQL, SchemaModeAuto:
	default:
		return SchemaPlan{}, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}

	if driverName(cfg) == DriverSQLite {
		plan.AutoMigrate = true
		return plan, nil
	}

	switch plan.Mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeAuto:
		if cfg.IsProduction() {
			return SchemaPlan{}, fmt.Errorf("DB_SCHEMA_MODE=auto is not allowed in %s", cfg.Env)
		}
		plan.AutoMigrate = true
	case SchemaModeHybrid:
		plan.SQL = true
		plan.AutoMigrate = !cfg.IsProduction()
	}
	return plan, nil
}

// ApplySchema brings the schema up to date according to PlanSchema.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		applied, err := NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("sql migrations: %w", err)
		}
		if len(applied) > 0 {
			middleware.Logger.Info("schema migrated", slog.Any("versions", applied))
		}
	}

	if plan.AutoMigrate {
		middleware.Logger.Info("auto-migrating models", slog.String("mode", plan.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan and the applied and pending migrations
// without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, Environment: cfg.Env}
	if !plan.SQL {
		return status, nil
	}

	m := NewMigrator(db)
	if status.Applied, err = m.Applied(ctx); err != nil {
		return nil, err
	}
	if status.Pending, err = m.Pending(ctx); err != nil {
		return nil, err
	}
	return status, nil
}
