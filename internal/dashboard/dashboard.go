// Package dashboard holds the admin dashboard state for one signed-in
// session: the applicant list, derived statistics and filters, row actions,
// resume preview and CSV export.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"lifewood/internal/apiclient"
	"lifewood/internal/blob"
	"lifewood/internal/models"
)

var (
	// ErrUnauthenticated means no admin token is stored.
	ErrUnauthenticated = errors.New("admin is not signed in")
	// ErrInFlight means the row already has an action outstanding.
	ErrInFlight = errors.New("an action for this applicant is already running")
	// ErrPreviewUnavailable means the resume could not be fetched for preview.
	ErrPreviewUnavailable = errors.New("resume preview unavailable")
	// ErrNothingToExport means the list is empty.
	ErrNothingToExport = errors.New("nothing to export")
)

// Messages shown for the errors above.
const (
	MsgPreviewUnavailable = "Unable to preview resume. Try downloading instead."
	MsgNothingToExport    = "No applicants to export"
)

// Dashboard is safe for concurrent use. Network calls run outside the lock.
type Dashboard struct {
	client *apiclient.Client
	tokens apiclient.TokenStore

	mu         sync.Mutex
	applicants []models.Applicant
	inFlight   map[uint]struct{}
	preview    *blob.Lease
	previewID  uint
}

// New returns an empty dashboard. blobs holds resume previews.
func New(client *apiclient.Client, tokens apiclient.TokenStore, blobs *blob.Registry) *Dashboard {
	return &Dashboard{
		client:   client,
		tokens:   tokens,
		inFlight: make(map[uint]struct{}),
		preview:  blob.NewLease(blobs),
	}
}

// Authenticated reports whether a token is stored.
func (d *Dashboard) Authenticated(ctx context.Context) bool {
	if d.tokens == nil {
		return false
	}
	token, err := d.tokens.Token(ctx)
	return err == nil && token != ""
}

// Load replaces the local list with the server's.
func (d *Dashboard) Load(ctx context.Context) error {
	if !d.Authenticated(ctx) {
		return ErrUnauthenticated
	}
	list, err := apiclient.Decode[[]models.Applicant](d.client.ListApplicants(ctx))
	if err != nil {
		return fmt.Errorf("load applicants: %w", err)
	}
	d.mu.Lock()
	d.applicants = list
	d.mu.Unlock()
	return nil
}

// Applicants returns a copy of the full list.
func (d *Dashboard) Applicants() []models.Applicant {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Applicant(nil), d.applicants...)
}

// Find returns the applicant with id from the local list.
func (d *Dashboard) Find(id uint) (models.Applicant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range d.applicants {
		if a.ID == id {
			return a, true
		}
	}
	return models.Applicant{}, false
}

// Stats are counts by status.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// Percent is n as a rounded share of Total, or 0 for an empty list.
func (s Stats) Percent(n int) int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(s.Total)))
}

// Stats counts the local list. A blank status counts as pending.
func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Stats{Total: len(d.applicants)}
	for _, a := range d.applicants {
		switch a.Status.Normalize() {
		case models.ApplicantStatusPending:
			s.Pending++
		case models.ApplicantStatusApproved:
			s.Approved++
		case models.ApplicantStatusRejected:
			s.Rejected++
		}
	}
	return s
}

// StatusAll disables the status filter.
const StatusAll = "all"

// Filter narrows the visible rows. Zero fields match everything.
type Filter struct {
	Search  string
	Project string
	Status  string
}

// Match reports whether a passes every predicate of f.
func (f Filter) Match(a models.Applicant) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		name := strings.ToLower(a.FirstName + " " + a.LastName)
		if !strings.Contains(name, q) &&
			!strings.Contains(strings.ToLower(a.Email), q) &&
			!strings.Contains(strings.ToLower(a.ProjectAppliedFor), q) {
			return false
		}
	}
	if f.Project != "" && a.ProjectAppliedFor != f.Project {
		return false
	}
	if f.Status != "" && f.Status != StatusAll &&
		string(a.Status.Normalize()) != strings.ToLower(f.Status) {
		return false
	}
	return true
}

// Filtered returns the rows matching f in list order.
func (d *Dashboard) Filtered(f Filter) []models.Applicant {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Applicant, 0, len(d.applicants))
	for _, a := range d.applicants {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// Logout revokes the token on the server, clears the store and drops the
// preview.
func (d *Dashboard) Logout(ctx context.Context) error {
	d.CloseResume()
	d.mu.Lock()
	d.applicants = nil
	d.mu.Unlock()

	var err error
	if d.client != nil {
		err = d.client.Logout(ctx)
	}
	if d.tokens != nil {
		if cerr := d.tokens.Clear(ctx); cerr != nil {
			return cerr
		}
	}
	return err
}
