// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"lifewood/internal/cache"
	"lifewood/internal/models"
	"lifewood/internal/observability"
	"lifewood/internal/validation"

	"gorm.io/gorm"
)

// ApplicantRepository defines persistence operations for applicants.
type ApplicantRepository interface {
	List(ctx context.Context) ([]models.Applicant, error)
	GetByID(ctx context.Context, id uint) (*models.Applicant, error)
	GetByEmail(ctx context.Context, email string) (*models.Applicant, error)
	ListByProject(ctx context.Context, project string) ([]models.Applicant, error)
	SearchByName(ctx context.Context, name string) ([]models.Applicant, error)
	Create(ctx context.Context, applicant *models.Applicant) error
	Update(ctx context.Context, applicant *models.Applicant) error
	UpdateStatus(ctx context.Context, id uint, status models.ApplicantStatus) (*models.Applicant, error)
	SetResume(ctx context.Context, id uint, fileName, contentType, path string) (*models.Applicant, error)
	Delete(ctx context.Context, id uint) error
}

type applicantRepository struct {
	db *gorm.DB
}

// NewApplicantRepository returns a new ApplicantRepository implementation.
func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) List(ctx context.Context) ([]models.Applicant, error) {
	var applicants []models.Applicant
	err := cache.Aside(ctx, "applicants", cache.ApplicantListKey, &applicants, cache.ApplicantListTTL, func() error {
		defer observability.TrackQuery("list", "applicants")()
		if err := r.db.WithContext(ctx).Order("id ASC").Find(&applicants).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if applicants == nil {
		applicants = []models.Applicant{}
	}
	return applicants, nil
}

func (r *applicantRepository) GetByID(ctx context.Context, id uint) (*models.Applicant, error) {
	defer observability.TrackQuery("get", "applicants")()
	var applicant models.Applicant
	if err := r.db.WithContext(ctx).First(&applicant, id).Error; err != nil {
		return nil, notFoundOrInternal(err, "Applicant", id)
	}
	return &applicant, nil
}

// GetByEmail returns nil, nil when no applicant uses email.
func (r *applicantRepository) GetByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &applicant, nil
}

func (r *applicantRepository) ListByProject(ctx context.Context, project string) ([]models.Applicant, error) {
	defer observability.TrackQuery("list_by_project", "applicants")()
	applicants := []models.Applicant{}
	if err := r.db.WithContext(ctx).
		Where("project_applied_for = ?", project).
		Order("id ASC").
		Find(&applicants).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return applicants, nil
}

// SearchByName matches name as a case-insensitive substring of the first or
// last name.
func (r *applicantRepository) SearchByName(ctx context.Context, name string) ([]models.Applicant, error) {
	defer observability.TrackQuery("search", "applicants")()
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	applicants := []models.Applicant{}
	if err := r.db.WithContext(ctx).
		Where("LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("id ASC").
		Find(&applicants).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return applicants, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *applicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	defer observability.TrackQuery("create", "applicants")()
	if err := r.db.WithContext(ctx).Create(applicant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(validation.MsgEmailAlreadyExists)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateApplicants(ctx)
	return nil
}

func (r *applicantRepository) Update(ctx context.Context, applicant *models.Applicant) error {
	defer observability.TrackQuery("update", "applicants")()
	if err := r.db.WithContext(ctx).Save(applicant).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError(validation.MsgEmailAlreadyExists)
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateApplicants(ctx)
	return nil
}

func (r *applicantRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicantStatus) (*models.Applicant, error) {
	defer observability.TrackQuery("update_status", "applicants")()
	var applicant models.Applicant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&applicant, id).Error; err != nil {
			return notFoundOrInternal(err, "Applicant", id)
		}
		if err := tx.Model(&applicant).Update("status", status).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateApplicants(ctx)
	return &applicant, nil
}

func (r *applicantRepository) SetResume(ctx context.Context, id uint, fileName, contentType, path string) (*models.Applicant, error) {
	defer observability.TrackQuery("set_resume", "applicants")()
	var applicant models.Applicant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&applicant, id).Error; err != nil {
			return notFoundOrInternal(err, "Applicant", id)
		}
		updates := map[string]any{
			"resume_file_name":    fileName,
			"resume_content_type": contentType,
			"resume_path":         path,
		}
		if err := tx.Model(&applicant).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	applicant.HasResume = applicant.ResumePath != ""
	cache.InvalidateApplicants(ctx)
	return &applicant, nil
}

func (r *applicantRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "applicants")()
	res := r.db.WithContext(ctx).Delete(&models.Applicant{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Applicant", id)
	}
	cache.InvalidateApplicants(ctx)
	return nil
}
