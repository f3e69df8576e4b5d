// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ApplicantStatus defines review states for an application.
type ApplicantStatus string

const (
	// ApplicantStatusPending indicates the application is awaiting review.
	ApplicantStatusPending ApplicantStatus = "pending"
	// ApplicantStatusApproved indicates the application was accepted.
	ApplicantStatusApproved ApplicantStatus = "approved"
	// ApplicantStatusRejected indicates the application was declined.
	ApplicantStatusRejected ApplicantStatus = "rejected"
)

// Normalize maps the empty status to pending.
func (s ApplicantStatus) Normalize() ApplicantStatus {
	if s == "" {
		return ApplicantStatusPending
	}
	return s
}

// ParseApplicantStatus parses a status name case-insensitively. "declined"
// is accepted as an alias of rejected.
func ParseApplicantStatus(raw string) (ApplicantStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return ApplicantStatusPending, nil
	case "approved":
		return ApplicantStatusApproved, nil
	case "rejected", "declined":
		return ApplicantStatusRejected, nil
	default:
		return "", fmt.Errorf("unknown applicant status %q", raw)
	}
}

// Applicant is a submitted job application.
type Applicant struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	FirstName          string          `gorm:"size:100;not null" json:"firstName"`
	LastName           string          `gorm:"size:100;not null" json:"lastName"`
	Age                int             `gorm:"not null" json:"age"`
	Degree             string          `gorm:"size:200;not null" json:"degree"`
	RelevantExperience string          `gorm:"type:text;not null" json:"relevantExperience"`
	Email              string          `gorm:"size:255;not null;uniqueIndex" json:"email"`
	ProjectAppliedFor  string          `gorm:"size:120;not null;index" json:"projectAppliedFor"`
	Status             ApplicantStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResumeFileName     string          `gorm:"size:255" json:"-"`
	ResumeContentType  string          `gorm:"size:150" json:"-"`
	ResumePath         string          `gorm:"size:500" json:"-"`
	// HasResume is derived from ResumePath and never stored.
	HasResume bool      `gorm:"-" json:"hasResume"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// AfterFind fills derived fields after a load.
func (a *Applicant) AfterFind(_ *gorm.DB) error {
	a.HasResume = a.ResumePath != ""
	return nil
}

// AfterSave fills derived fields after a write.
func (a *Applicant) AfterSave(_ *gorm.DB) error {
	a.HasResume = a.ResumePath != ""
	return nil
}

// FullName joins first and last name with a single space.
func (a *Applicant) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// ApplicantInput carries the editable applicant fields for create and update.
type ApplicantInput struct {
	FirstName          string `json:"firstName" form:"firstName"`
	LastName           string `json:"lastName" form:"lastName"`
	Age                int    `json:"age" form:"age"`
	Degree             string `json:"degree" form:"degree"`
	RelevantExperience string `json:"relevantExperience" form:"relevantExperience"`
	Email              string `json:"email" form:"email"`
	ProjectAppliedFor  string `json:"projectAppliedFor" form:"projectAppliedFor"`
	Status             string `json:"status,omitempty" form:"status"`
}

// InputFrom copies the editable fields of a into an ApplicantInput.
func InputFrom(a Applicant) ApplicantInput {
	return ApplicantInput{
		FirstName:          a.FirstName,
		LastName:           a.LastName,
		Age:                a.Age,
		Degree:             a.Degree,
		RelevantExperience: a.RelevantExperience,
		Email:              a.Email,
		ProjectAppliedFor:  a.ProjectAppliedFor,
		Status:             string(a.Status),
	}
}
