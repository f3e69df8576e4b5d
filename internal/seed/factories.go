// Package seed creates demo applicants for development databases. These
// helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"lifewood/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var degrees = []string{
	"BS Computer Science",
	"BS Information Technology",
	"BA Linguistics",
	"BS Statistics",
	"BA Communication",
	"BS Mathematics",
	"BA History",
	"MS Data Science",
}

// Factory builds applicants and persists them.
type Factory struct {
	db       *gorm.DB
	opts     SeedOptions
	projects []string
	faker    *gofakeit.Faker
	rng      *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. projects are the titles an
// applicant may apply for and must not be empty.
func NewFactory(db *gorm.DB, opts SeedOptions, projects []string) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:       db,
		opts:     opts,
		projects: projects,
		faker:    gofakeit.New(seed),
		rng:      rand.New(rand.NewSource(seed)),
		nextID:   1000,
	}
}

// BuildApplicant returns an unsaved applicant with plausible field values.
// Emails carry a numeric suffix so repeated runs rarely collide.
func (f *Factory) BuildApplicant(overrides ...func(*models.Applicant)) *models.Applicant {
	first := f.faker.FirstName()
	last := f.faker.LastName()

	a := &models.Applicant{
		FirstName:          first,
		LastName:           last,
		Age:                f.faker.Number(18, 60),
		Degree:             degrees[f.rng.Intn(len(degrees))],
		RelevantExperience: f.faker.Sentence(12),
		Email: fmt.Sprintf("%s.%s%d@%s",
			strings.ToLower(first), strings.ToLower(last), f.faker.Number(100, 9999), f.faker.DomainName()),
		ProjectAppliedFor: f.projects[f.rng.Intn(len(f.projects))],
		Status:            f.pickStatus(),
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 60
	}
	a.CreatedAt = time.Now().Add(-time.Duration(f.rng.Intn(maxDays*24)) * time.Hour)

	for _, override := range overrides {
		override(a)
	}
	return a
}

// pickStatus leans toward pending, the state of most real applications.
func (f *Factory) pickStatus() models.ApplicantStatus {
	switch n := f.rng.Intn(10); {
	case n < 6:
		return models.ApplicantStatusPending
	case n < 8:
		return models.ApplicantStatusApproved
	default:
		return models.ApplicantStatusRejected
	}
}

// CreateApplicants persists applicants in batches.
func (f *Factory) CreateApplicants(applicants []*models.Applicant) error {
	if len(applicants) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, a := range applicants {
			f.nextID++
			a.ID = f.nextID
		}
		log.Printf("[dry-run] CreateApplicants: %d applicants (no DB write)", len(applicants))
		return nil
	}
	return f.db.CreateInBatches(&applicants, 100).Error
}
