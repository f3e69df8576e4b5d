package seed

import (
	"fmt"
	"log"

	"lifewood/internal/models"

	"gorm.io/gorm"
)

// SeedOptions tunes generated data.
type SeedOptions struct {
	// DryRun builds applicants without writing them.
	DryRun bool
	// MaxDays bounds how far back creation times are spread.
	MaxDays int
	// RandSeed makes output reproducible when non-zero.
	RandSeed int64
}

// Options configuration for the seeder
type Options struct {
	NumApplicants int
	ShouldClean   bool
	SeedOptions
}

// Seeder fills a database with demo applicants.
type Seeder struct {
	db       *gorm.DB
	projects []string
}

// NewSeeder returns a Seeder that assigns applicants to the given project
// titles.
func NewSeeder(db *gorm.DB, projects []string) *Seeder {
	return &Seeder{db: db, projects: projects}
}

// ClearAll deletes every applicant row.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Cleaning applicants...")
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Applicant{}).Error; err != nil {
		return fmt.Errorf("clear applicants: %w", err)
	}
	return nil
}

// Run applies opts and returns the applicants it created.
func (s *Seeder) Run(opts Options) ([]*models.Applicant, error) {
	if len(s.projects) == 0 {
		return nil, fmt.Errorf("no projects to assign applicants to")
	}
	if opts.ShouldClean && !opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}
	return s.SeedApplicants(opts.NumApplicants, opts.SeedOptions)
}

// SeedApplicants creates n applicants spread over the seeder's projects.
func (s *Seeder) SeedApplicants(n int, opts SeedOptions) ([]*models.Applicant, error) {
	if n <= 0 {
		return nil, nil
	}
	f := NewFactory(s.db, opts, s.projects)

	seen := make(map[string]bool, n)
	applicants := make([]*models.Applicant, 0, n)
	for len(applicants) < n {
		a := f.BuildApplicant()
		if seen[a.Email] {
			continue
		}
		seen[a.Email] = true
		applicants = append(applicants, a)
	}

	if err := f.CreateApplicants(applicants); err != nil {
		return nil, fmt.Errorf("create applicants: %w", err)
	}
	log.Printf("👤 Seeded %d applicants", len(applicants))
	return applicants, nil
}
