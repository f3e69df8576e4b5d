package registration

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lifewood/internal/apiclient"
	"lifewood/internal/featureflags"
	"lifewood/internal/middleware"
	"lifewood/internal/validation"
)

// Outcome classifies a submit attempt.
type Outcome int

const (
	// OutcomeInvalid means local validation failed and nothing was sent.
	OutcomeInvalid Outcome = iota
	// OutcomeSubmitted means the application was created.
	OutcomeSubmitted
	// OutcomeAlreadyApplied means the server refused the application as a
	// duplicate and the user is told they already applied.
	OutcomeAlreadyApplied
	// OutcomeFailed means the submit failed and the form is kept.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeAlreadyApplied:
		return "already_applied"
	default:
		return "failed"
	}
}

// Messages shown after submit.
const (
	NoticeSubmitted      = "Application submitted successfully! We'll be in touch soon."
	NoticeAlreadyApplied = "It looks like you already have an application with us. We'll be in touch soon."
	BannerSubmitFailed   = "Failed to submit application. Please try again."
)

// Result tells the caller what to show next.
type Result struct {
	Outcome Outcome
	// Redirect is the page to navigate to, or empty to stay on the form.
	Redirect string
	// Notice is a one-time message for the page after the redirect.
	Notice string
}

// Submit validates everything, posts the application and maps the answer.
// On success and on a soft duplicate the draft is reset.
func (d *Draft) Submit(ctx context.Context) (Result, error) {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return Result{Outcome: OutcomeFailed}, ErrSubmitting
	}
	if errs := d.validateAllLocked(); len(errs) > 0 {
		d.errors = errs
		d.mu.Unlock()
		return Result{Outcome: OutcomeInvalid}, nil
	}
	form := d.multipartLocked()
	d.submitting = true
	d.banner = ""
	d.mu.Unlock()

	resp, err := d.client.CreateApplicant(ctx, form)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false

	if err == nil {
		if resp.Status == http.StatusCreated {
			d.resetLocked()
			return Result{Outcome: OutcomeSubmitted, Redirect: "/", Notice: NoticeSubmitted}, nil
		}
		// Only a created record counts. Any other 2xx keeps the form.
		d.banner = BannerSubmitFailed
		middleware.Logger.WarnContext(ctx, "application submit got unexpected status",
			slog.Int("status", resp.Status))
		return Result{Outcome: OutcomeFailed}, nil
	}

	if apiErr, ok := apiclient.AsError(err); ok {
		status := apiErr.Status()
		if (status == http.StatusBadRequest || status == http.StatusConflict) &&
			d.flags.Enabled(featureflags.DuplicateEmailSoftSuccess, d.subject) {
			d.resetLocked()
			return Result{Outcome: OutcomeAlreadyApplied, Redirect: "/", Notice: NoticeAlreadyApplied}, nil
		}
		d.banner = BannerSubmitFailed
		if msg := apiErr.Message(); msg != "" {
			d.banner = msg
		}
	} else {
		d.banner = BannerSubmitFailed
	}

	middleware.Logger.WarnContext(ctx, "application submit failed",
		slog.Bool("network", errors.Is(err, apiclient.ErrNetwork)),
		slog.String("error", err.Error()))
	return Result{Outcome: OutcomeFailed}, nil
}

func (d *Draft) multipartLocked() *apiclient.Multipart {
	f := d.fields
	return apiclient.NewMultipart().
		Field(validation.FieldFirstName, strings.TrimSpace(f.FirstName)).
		Field(validation.FieldLastName, strings.TrimSpace(f.LastName)).
		Field(validation.FieldAge, strings.TrimSpace(f.Age)).
		Field(validation.FieldDegree, strings.TrimSpace(f.Degree)).
		Field(validation.FieldRelevantExperience, strings.TrimSpace(f.RelevantExperience)).
		Field(validation.FieldEmail, strings.TrimSpace(f.Email)).
		Field(validation.FieldProject, f.ProjectAppliedFor).
		File(validation.FieldResume, d.resume.Name, d.resume.ContentType, d.resume.Data)
}
