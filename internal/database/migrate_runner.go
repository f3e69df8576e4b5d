package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lifewood/internal/middleware"

	"gorm.io/gorm"
)

// ErrNotLatest is returned when rolling back anything but the newest applied
// migration.
var ErrNotLatest = errors.New("only the most recently applied migration can be rolled back")

// MigrationLog is one row of the applied-migrations table.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName keeps the table name stable across model renames.
func (MigrationLog) TableName() string {
	return "schema_migrations"
}

// Migrator applies and rolls back SQL migrations, recording each in
// schema_migrations.
type Migrator struct {
	db  *gorm.DB
	set []Migration
}

// NewMigrator returns a Migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{db: db, set: registered}
}

func newMigrator(db *gorm.DB, set []Migration) *Migrator {
	return &Migrator{db: db, set: set}
}

// Applied lists applied migrations oldest first. A database that was never
// migrated has none.
func (m *Migrator) Applied(ctx context.Context) ([]MigrationLog, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return nil, nil
	}
	var logs []MigrationLog
	if err := db.Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	return logs, nil
}

// Pending lists migrations not yet applied, in version order.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, l := range applied {
		done[l.Version] = true
	}

	var pending []Migration
	for _, mig := range m.set {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions it applied. It refuses to run when the recorded
// history does not match the embedded files.
func (m *Migrator) Up(ctx context.Context) ([]int, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationLog{}); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	if err := verifyHistory(applied, m.set); err != nil {
		return nil, err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var done []int
	for _, mig := range pending {
		start := time.Now()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.Up).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum}).Error
		})
		if err != nil {
			return done, fmt.Errorf("apply %s: %w", mig, err)
		}
		middleware.Logger.Info("migration applied",
			slog.String("migration", mig.String()),
			slog.Duration("took", time.Since(start)))
		done = append(done, mig.Version)
	}
	return done, nil
}

// Down reverts version, which must be the newest applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	var mig *Migration
	for i := range m.set {
		if m.set[i].Version == version {
			mig = &m.set[i]
			break
		}
	}
	if mig == nil {
		return fmt.Errorf("migration %06d is not known", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 || applied[len(applied)-1].Version != version {
		for _, l := range applied {
			if l.Version == version {
				return fmt.Errorf("rollback %s: %w", mig, ErrNotLatest)
			}
		}
		return fmt.Errorf("migration %s has not been applied", mig)
	}

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.Down).Error; err != nil {
			return err
		}
		return tx.Delete(&MigrationLog{}, "version = ?", version).Error
	})
	if err != nil {
		return fmt.Errorf("rollback %s: %w", mig, err)
	}
	middleware.Logger.Info("migration rolled back", slog.String("migration", mig.String()))
	return nil
}

// verifyHistory checks that every applied version is still shipped and its
// up script is unchanged. Logs without a checksum are accepted.
func verifyHistory(applied []MigrationLog, set []Migration) error {
	byVersion := make(map[int]Migration, len(set))
	for _, mig := range set {
		byVersion[mig.Version] = mig
	}

	var problems []string
	for _, l := range applied {
		mig, ok := byVersion[l.Version]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%06d_%s is applied but no longer shipped", l.Version, l.Name))
		case l.Checksum != "" && l.Checksum != mig.Checksum:
			problems = append(problems, fmt.Sprintf("%s was edited after it was applied", mig))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("schema history mismatch: %s (on a development database, `migrate reset` rebuilds it)",
		strings.Join(problems, "; "))
}
