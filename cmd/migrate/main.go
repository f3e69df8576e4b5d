// Command migrate applies, inspects, rolls back and resets the applicant
// database schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"lifewood/internal/config"
	"lifewood/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|auto|status|down|inspect|reset> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		applied, err := database.NewMigrator(db).Up(ctx)
		if err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Printf("applied %d migration(s) %v", len(applied), applied)
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s env=%s sql=%t auto=%t applied=%d pending=%d",
			status.Mode, status.Environment, status.SQL, status.AutoMigrate, len(status.Applied), len(status.Pending))
		for _, l := range status.Applied {
			log.Printf("applied: %06d_%s at %s", l.Version, l.Name, l.AppliedAt.Format(time.RFC3339))
		}
		for _, m := range status.Pending {
			log.Printf("pending: %s", m)
		}
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate/main.go down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.NewMigrator(db).Down(ctx, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	case "inspect":
		return inspect(db)
	case "reset":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to reset a production database")
		}
		tables := append(database.PersistentModels(), &database.MigrationLog{})
		if err := db.Migrator().DropTable(tables...); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		log.Println("schema dropped; run `up` or `auto` to recreate it")
	default:
		return usage()
	}

	return nil
}

// inspect prints the columns and indexes of every managed table.
func inspect(db *gorm.DB) error {
	m := db.Migrator()
	for _, model := range database.PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return err
		}
		table := stmt.Schema.Table
		if !m.HasTable(model) {
			fmt.Printf("%s: missing\n", table)
			continue
		}

		columns, err := m.ColumnTypes(model)
		if err != nil {
			return fmt.Errorf("columns of %s: %w", table, err)
		}
		fmt.Printf("Columns in %s:\n", table)
		for _, c := range columns {
			nullable, _ := c.Nullable()
			fmt.Printf(" - %s: %s (nullable=%t)\n", c.Name(), c.DatabaseTypeName(), nullable)
		}

		indexes, err := m.GetIndexes(model)
		if err != nil {
			return fmt.Errorf("indexes of %s: %w", table, err)
		}
		fmt.Printf("Indexes in %s:\n", table)
		for _, idx := range indexes {
			unique, _ := idx.Unique()
			fmt.Printf(" - %s on %v (unique=%t)\n", idx.Name(), idx.Columns(), unique)
		}

		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Printf("Rows in %s: %d\n", table, count)
	}
	return nil
}
