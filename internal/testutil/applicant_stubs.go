// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lifewood/internal/models"
	"lifewood/internal/repository"
	"lifewood/internal/validation"
)

// ApplicantRepoStub is an in-memory applicant repository implementation for tests.
type ApplicantRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.Applicant
	nextID uint
}

var _ repository.ApplicantRepository = (*ApplicantRepoStub)(nil)

// NewApplicantRepoStub creates an empty in-memory applicant repository.
func NewApplicantRepoStub() *ApplicantRepoStub {
	return &ApplicantRepoStub{items: make(map[uint]*models.Applicant), nextID: 1}
}

func (s *ApplicantRepoStub) sorted(match func(*models.Applicant) bool) []models.Applicant {
	out := []models.Applicant{}
	for _, a := range s.items {
		if match == nil || match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// List returns all applicants by id.
func (s *ApplicantRepoStub) List(_ context.Context) ([]models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(nil), nil
}

// GetByID returns a copy of the applicant or a not-found AppError.
func (s *ApplicantRepoStub) GetByID(_ context.Context, id uint) (*models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("Applicant", id)
	}
	cp := *a
	return &cp, nil
}

// GetByEmail returns nil, nil when nobody uses email.
func (s *ApplicantRepoStub) GetByEmail(_ context.Context, email string) (*models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// ListByProject matches the project title exactly.
func (s *ApplicantRepoStub) ListByProject(_ context.Context, project string) ([]models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(a *models.Applicant) bool { return a.ProjectAppliedFor == project }), nil
}

// SearchByName matches a case-insensitive substring of first or last name.
func (s *ApplicantRepoStub) SearchByName(_ context.Context, name string) ([]models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(name)
	return s.sorted(func(a *models.Applicant) bool {
		return strings.Contains(strings.ToLower(a.FirstName), q) || strings.Contains(strings.ToLower(a.LastName), q)
	}), nil
}

// Create assigns an id and stores the applicant.
func (s *ApplicantRepoStub) Create(_ context.Context, a *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.Email == a.Email {
			return models.NewConflictError(validation.MsgEmailAlreadyExists)
		}
	}
	a.ID = s.nextID
	s.nextID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Status = a.Status.Normalize()
	a.HasResume = a.ResumePath != ""
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

// Update replaces a stored applicant.
func (s *ApplicantRepoStub) Update(_ context.Context, a *models.Applicant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[a.ID]; !ok {
		return models.NewNotFoundError("Applicant", a.ID)
	}
	for id, existing := range s.items {
		if id != a.ID && existing.Email == a.Email {
			return models.NewConflictError(validation.MsgEmailAlreadyExists)
		}
	}
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

// UpdateStatus sets the status of an applicant.
func (s *ApplicantRepoStub) UpdateStatus(_ context.Context, id uint, status models.ApplicantStatus) (*models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("Applicant", id)
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

// SetResume records the resume columns of an applicant.
func (s *ApplicantRepoStub) SetResume(_ context.Context, id uint, fileName, contentType, path string) (*models.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("Applicant", id)
	}
	a.ResumeFileName = fileName
	a.ResumeContentType = contentType
	a.ResumePath = path
	a.HasResume = path != ""
	cp := *a
	return &cp, nil
}

// Delete removes an applicant.
func (s *ApplicantRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return models.NewNotFoundError("Applicant", id)
	}
	delete(s.items, id)
	return nil
}
