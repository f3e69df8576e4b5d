package service

import (
	"context"
	"log/slog"
	"strings"

	"lifewood/internal/middleware"
	"lifewood/internal/models"
	"lifewood/internal/notifications"
	"lifewood/internal/observability"
	"lifewood/internal/repository"
	"lifewood/internal/storage"
	"lifewood/internal/validation"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
)

// ApplicantNotifier sends decision mails to applicants.
type ApplicantNotifier interface {
	Notify(ctx context.Context, kind notifications.Kind, to, name string) error
}

// EventPublisher announces applicant lifecycle changes.
type EventPublisher interface {
	Publish(ctx context.Context, ev notifications.Event) error
}

// ResumeFiles stores resume bytes.
type ResumeFiles interface {
	Save(id uint, originalName string, data []byte) (storage.StoredResume, error)
	Read(path string) ([]byte, error)
	Remove(path string) error
}

// ResumeUpload is a resume file received from a client.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ResumeFile is a stored resume ready to be streamed back.
type ResumeFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ApplicantService holds the applicant workflows behind the REST API.
type ApplicantService struct {
	repo     repository.ApplicantRepository
	projects validation.ProjectLookup
	resumes  ResumeFiles
	mailer   ApplicantNotifier
	events   EventPublisher
}

// NewApplicantService wires the applicant workflows. mailer may be nil, in
// which case status changes send no mail.
func NewApplicantService(
	repo repository.ApplicantRepository,
	projects validation.ProjectLookup,
	resumes ResumeFiles,
	mailer ApplicantNotifier,
) *ApplicantService {
	return &ApplicantService{repo: repo, projects: projects, resumes: resumes, mailer: mailer}
}

// WithEvents sets the publisher for lifecycle events and returns s.
func (s *ApplicantService) WithEvents(p EventPublisher) *ApplicantService {
	s.events = p
	return s
}

// publish never fails the caller.
func (s *ApplicantService) publish(ctx context.Context, typ notifications.EventType, a *models.Applicant) {
	if s.events == nil {
		return
	}
	ev := notifications.Event{
		Type:        typ,
		ApplicantID: a.ID,
		Project:     a.ProjectAppliedFor,
		Status:      string(a.Status.Normalize()),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish applicant event",
			slog.String("type", string(typ)),
			slog.Uint64("applicant_id", uint64(a.ID)),
			slog.String("error", err.Error()))
	}
}

func (s *ApplicantService) List(ctx context.Context) ([]models.Applicant, error) {
	return s.repo.List(ctx)
}

func (s *ApplicantService) Get(ctx context.Context, id uint) (*models.Applicant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ApplicantService) ListByProject(ctx context.Context, project string) ([]models.Applicant, error) {
	return s.repo.ListByProject(ctx, project)
}

func (s *ApplicantService) SearchByName(ctx context.Context, name string) ([]models.Applicant, error) {
	return s.repo.SearchByName(ctx, strings.TrimSpace(name))
}

// Create validates and stores a new application. The resume is optional at
// this layer; when present it is checked before anything is written.
func (s *ApplicantService) Create(ctx context.Context, in models.ApplicantInput, resume *ResumeUpload) (_ *models.Applicant, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "applicant.create",
		attribute.String("project", in.ProjectAppliedFor))
	defer func() { observability.EndSpan(span, err) }()

	in = trimInput(in)
	if errs := validation.ApplicantInput(in, s.projects); len(errs) > 0 {
		return nil, models.NewValidationError(errs.First())
	}

	var contentType string
	if resume != nil && len(resume.Data) > 0 {
		if contentType, err = checkResume(resume); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(validation.MsgEmailAlreadyExists)
	}

	applicant := &models.Applicant{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Age:                in.Age,
		Degree:             in.Degree,
		RelevantExperience: in.RelevantExperience,
		Email:              in.Email,
		ProjectAppliedFor:  in.ProjectAppliedFor,
		Status:             models.ApplicantStatusPending,
	}
	if err := s.repo.Create(ctx, applicant); err != nil {
		return nil, err
	}
	observability.ApplicationsSubmitted.WithLabelValues(applicant.ProjectAppliedFor).Inc()
	middleware.Logger.InfoContext(ctx, "application received",
		slog.Uint64("applicant_id", uint64(applicant.ID)),
		slog.String("project", applicant.ProjectAppliedFor))
	s.publish(ctx, notifications.EventCreated, applicant)

	if contentType != "" {
		return s.storeResume(ctx, applicant.ID, resume, contentType)
	}
	return applicant, nil
}

// Update replaces the editable fields of an applicant. A blank status keeps
// the current one.
func (s *ApplicantService) Update(ctx context.Context, id uint, in models.ApplicantInput) (*models.Applicant, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in = trimInput(in)
	if errs := validation.ApplicantInput(in, s.projects); len(errs) > 0 {
		return nil, models.NewValidationError(errs.First())
	}

	if !strings.EqualFold(current.Email, in.Email) {
		other, err := s.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, models.NewConflictError(validation.MsgEmailAlreadyExists)
		}
	}

	if in.Status != "" {
		status, err := models.ParseApplicantStatus(in.Status)
		if err != nil {
			return nil, models.NewValidationError("Invalid status")
		}
		current.Status = status
	}

	current.FirstName = in.FirstName
	current.LastName = in.LastName
	current.Age = in.Age
	current.Degree = in.Degree
	current.RelevantExperience = in.RelevantExperience
	current.Email = in.Email
	current.ProjectAppliedFor = in.ProjectAppliedFor

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// UploadResume stores or replaces the resume of an existing applicant.
func (s *ApplicantService) UploadResume(ctx context.Context, id uint, resume *ResumeUpload) (*models.Applicant, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if resume == nil || len(resume.Data) == 0 {
		return nil, models.NewValidationError(validation.MsgResumeRequired)
	}
	contentType, err := checkResume(resume)
	if err != nil {
		return nil, err
	}
	return s.storeResume(ctx, id, resume, contentType)
}

func (s *ApplicantService) storeResume(ctx context.Context, id uint, resume *ResumeUpload, contentType string) (*models.Applicant, error) {
	stored, err := s.resumes.Save(id, resume.FileName, resume.Data)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.repo.SetResume(ctx, id, stored.FileName, contentType, stored.Path)
}

// checkResume enforces size and type. The declared type must be allowed and
// the bytes must sniff as a matching document.
func checkResume(resume *ResumeUpload) (string, error) {
	if msg := validation.Resume(true, resume.ContentType, int64(len(resume.Data))); msg != "" {
		return "", models.NewValidationError(msg)
	}
	contentType, ok := validation.SniffResume(resume.ContentType, resume.Data)
	if !ok {
		return "", models.NewValidationError(validation.MsgResumeType)
	}
	return contentType, nil
}

// Resume loads the stored resume of an applicant.
func (s *ApplicantService) Resume(ctx context.Context, id uint) (*ResumeFile, error) {
	applicant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if applicant.ResumePath == "" {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: validation.MsgResumeNotUploaded}
	}
	data, err := s.resumes.Read(applicant.ResumePath)
	if err != nil {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Resume file not found on server", Err: err}
	}

	contentType := applicant.ResumeContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	name := applicant.ResumeFileName
	if name == "" {
		name = storage.SafeFileName(id, "")
	}
	return &ResumeFile{FileName: name, ContentType: contentType, Data: data}, nil
}

// UpdateStatus sets an arbitrary status. Approved and rejected statuses
// trigger the matching mail.
func (s *ApplicantService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Applicant, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.NewValidationError(validation.MsgStatusRequired)
	}
	status, err := models.ParseApplicantStatus(raw)
	if err != nil {
		return nil, models.NewValidationError("Invalid status")
	}
	return s.setStatus(ctx, id, status)
}

// Approve marks the applicant approved and sends the approval mail.
func (s *ApplicantService) Approve(ctx context.Context, id uint) (*models.Applicant, error) {
	return s.setStatus(ctx, id, models.ApplicantStatusApproved)
}

// Decline marks the applicant rejected and sends the decline mail.
func (s *ApplicantService) Decline(ctx context.Context, id uint) (*models.Applicant, error) {
	return s.setStatus(ctx, id, models.ApplicantStatusRejected)
}

func (s *ApplicantService) setStatus(ctx context.Context, id uint, status models.ApplicantStatus) (_ *models.Applicant, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "applicant.status",
		attribute.Int64("applicant.id", int64(id)),
		attribute.String("status", string(status)))
	defer func() { observability.EndSpan(span, err) }()

	applicant, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	observability.StatusChanges.WithLabelValues(string(status)).Inc()
	s.publish(ctx, notifications.EventStatusChanged, applicant)

	switch status {
	case models.ApplicantStatusApproved:
		s.notify(ctx, notifications.KindApproval, applicant)
	case models.ApplicantStatusRejected:
		s.notify(ctx, notifications.KindDecline, applicant)
	}
	return applicant, nil
}

// notify never fails the caller; delivery problems are only logged.
func (s *ApplicantService) notify(ctx context.Context, kind notifications.Kind, a *models.Applicant) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Notify(ctx, kind, a.Email, a.FullName()); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to send status email",
			slog.Uint64("applicant_id", uint64(a.ID)),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
}

// Delete removes the applicant and their resume file.
func (s *ApplicantService) Delete(ctx context.Context, id uint) error {
	applicant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, notifications.EventDeleted, applicant)
	if applicant.ResumePath != "" {
		if err := s.resumes.Remove(applicant.ResumePath); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove resume file",
				slog.Uint64("applicant_id", uint64(id)),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func trimInput(in models.ApplicantInput) models.ApplicantInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Degree = strings.TrimSpace(in.Degree)
	in.RelevantExperience = strings.TrimSpace(in.RelevantExperience)
	in.Email = strings.TrimSpace(in.Email)
	in.ProjectAppliedFor = strings.TrimSpace(in.ProjectAppliedFor)
	in.Status = strings.TrimSpace(in.Status)
	return in
}
