package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"lifewood/internal/apiclient"
	"lifewood/internal/models"
	"lifewood/internal/validation"
)

// Approve approves one applicant.
func (d *Dashboard) Approve(ctx context.Context, id uint) error {
	return d.act(ctx, id, func(ctx context.Context) (*apiclient.Response, error) {
		return d.client.ApproveApplicant(ctx, id)
	})
}

// Decline rejects one applicant.
func (d *Dashboard) Decline(ctx context.Context, id uint) error {
	return d.act(ctx, id, func(ctx context.Context) (*apiclient.Response, error) {
		return d.client.DeclineApplicant(ctx, id)
	})
}

// SetStatus sets an arbitrary status.
func (d *Dashboard) SetStatus(ctx context.Context, id uint, status models.ApplicantStatus) error {
	return d.act(ctx, id, func(ctx context.Context) (*apiclient.Response, error) {
		return d.client.UpdateApplicantStatus(ctx, id, string(status))
	})
}

// act runs call with id marked in flight and patches the row with the
// returned applicant on success.
func (d *Dashboard) act(ctx context.Context, id uint, call func(context.Context) (*apiclient.Response, error)) error {
	d.mu.Lock()
	if _, busy := d.inFlight[id]; busy {
		d.mu.Unlock()
		return ErrInFlight
	}
	d.inFlight[id] = struct{}{}
	d.mu.Unlock()

	updated, err := apiclient.Decode[models.Applicant](call(ctx))

	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, id)
	if err != nil {
		return err
	}
	for i := range d.applicants {
		if d.applicants[i].ID == id {
			d.applicants[i] = updated
			break
		}
	}
	return nil
}

// InFlight reports whether id has an action outstanding.
func (d *Dashboard) InFlight(id uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[id]
	return ok
}

// CanApprove is false when the row is already approved or busy.
func (d *Dashboard) CanApprove(id uint) bool {
	return d.can(id, models.ApplicantStatusApproved)
}

// CanDecline is false when the row is already rejected or busy.
func (d *Dashboard) CanDecline(id uint) bool {
	return d.can(id, models.ApplicantStatusRejected)
}

func (d *Dashboard) can(id uint, target models.ApplicantStatus) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[id]; busy {
		return false
	}
	for _, a := range d.applicants {
		if a.ID == id {
			return a.Status.Normalize() != target
		}
	}
	return true
}

// Save creates an applicant when id is 0 and updates it otherwise, then
// reloads the list.
func (d *Dashboard) Save(ctx context.Context, id uint, in models.ApplicantInput) error {
	var err error
	if id == 0 {
		form := apiclient.NewMultipart().
			Field(validation.FieldFirstName, in.FirstName).
			Field(validation.FieldLastName, in.LastName).
			Field(validation.FieldAge, strconv.Itoa(in.Age)).
			Field(validation.FieldDegree, in.Degree).
			Field(validation.FieldRelevantExperience, in.RelevantExperience).
			Field(validation.FieldEmail, in.Email).
			Field(validation.FieldProject, in.ProjectAppliedFor)
		_, err = d.client.CreateApplicant(ctx, form)
	} else {
		_, err = d.client.UpdateApplicant(ctx, id, in)
	}
	if err != nil {
		return fmt.Errorf("save applicant: %w", err)
	}
	return d.Load(ctx)
}

// Delete removes an applicant and drops it from the local list.
func (d *Dashboard) Delete(ctx context.Context, id uint) error {
	if _, err := d.client.DeleteApplicant(ctx, id); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.applicants {
		if d.applicants[i].ID == id {
			d.applicants = append(d.applicants[:i], d.applicants[i+1:]...)
			break
		}
	}
	if d.previewID == id {
		d.preview.Release()
		d.previewID = 0
	}
	return nil
}
