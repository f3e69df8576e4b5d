package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"lifewood/internal/apiclient"
	"lifewood/internal/blob"
	"lifewood/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory applicant backend.
type fakeAPI struct {
	mu         sync.Mutex
	applicants []models.Applicant
	nextID     uint
	calls      map[string]int
	// gate, when set, blocks action handlers until closed.
	gate       chan struct{}
	resumeFail bool
}

func newFakeAPI(list ...models.Applicant) *fakeAPI {
	return &fakeAPI{applicants: list, nextID: 100, calls: map[string]int{}}
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	parts := strings.Split(path, "/")

	f.mu.Lock()
	f.calls[r.Method+" "+parts[0]+suffix(parts)]++
	gate := f.gate
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && path == "applicants":
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.applicants)
	case r.Method == http.MethodPost && path == "applicants":
		_ = r.ParseMultipartForm(1 << 20)
		age, _ := strconv.Atoi(r.FormValue("age"))
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		a := models.Applicant{ID: f.nextID, FirstName: r.FormValue("firstName"), LastName: r.FormValue("lastName"),
			Age: age, Email: r.FormValue("email"), ProjectAppliedFor: r.FormValue("projectAppliedFor")}
		f.applicants = append(f.applicants, a)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(a)
	case len(parts) >= 2 && parts[0] == "applicants":
		id64, _ := strconv.ParseUint(parts[1], 10, 64)
		id := uint(id64)
		if len(parts) == 3 && parts[2] == "resume" {
			if f.resumeFail {
				http.Error(w, `{"error":"Resume not uploaded for this applicant"}`, http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = fmt.Fprintf(w, "%%PDF resume %d", id)
			return
		}
		if gate != nil {
			<-gate
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.applicants {
			if f.applicants[i].ID != id {
				continue
			}
			a := &f.applicants[i]
			switch {
			case len(parts) == 3 && parts[2] == "approve":
				a.Status = models.ApplicantStatusApproved
			case len(parts) == 3 && parts[2] == "decline":
				a.Status = models.ApplicantStatusRejected
			case len(parts) == 3 && parts[2] == "status":
				var body struct{ Status string }
				_ = json.NewDecoder(r.Body).Decode(&body)
				a.Status = models.ApplicantStatus(body.Status)
			case len(parts) == 2 && r.Method == http.MethodPut:
				var in models.ApplicantInput
				_ = json.NewDecoder(r.Body).Decode(&in)
				a.FirstName, a.LastName, a.Email = in.FirstName, in.LastName, in.Email
			case len(parts) == 2 && r.Method == http.MethodDelete:
				f.applicants = append(f.applicants[:i], f.applicants[i+1:]...)
				_, _ = w.Write([]byte(`{"message":"Applicant deleted successfully"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(a)
			return
		}
		http.Error(w, `{"error":"Applicant not found"}`, http.StatusNotFound)
	case r.Method == http.MethodPost && path == "admin/logout":
		_, _ = w.Write([]byte(`{"message":"Logged out"}`))
	default:
		http.NotFound(w, r)
	}
}

func suffix(parts []string) string {
	switch {
	case len(parts) == 3:
		return "/" + parts[2]
	case parts[0] == "admin" && len(parts) > 1:
		return "/" + parts[1]
	}
	return ""
}

type fixture struct {
	api    *fakeAPI
	tokens *apiclient.MemoryTokenStore
	blobs  *blob.Registry
	dash   *Dashboard
}

func newFixture(t *testing.T, api *fakeAPI, signedIn bool) *fixture {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	tokens := apiclient.NewMemoryTokenStore()
	if signedIn {
		require.NoError(t, tokens.Save(context.Background(), "tok", &models.Admin{ID: 1}))
	}
	blobs := blob.NewRegistry(0)
	client := apiclient.New(srv.URL+"/api", tokens)
	return &fixture{api: api, tokens: tokens, blobs: blobs, dash: New(client, tokens, blobs)}
}

func applicant(id uint, first, last, project string, status models.ApplicantStatus) models.Applicant {
	return models.Applicant{
		ID:                id,
		FirstName:         first,
		LastName:          last,
		Email:             strings.ToLower(first) + "@example.com",
		Degree:            "BS",
		ProjectAppliedFor: project,
		Status:            status,
		CreatedAt:         time.Date(2024, 3, 1, 9, 30, 0, 250_000_000, time.UTC),
	}
}

func TestLoad_RequiresToken(t *testing.T) {
	f := newFixture(t, newFakeAPI(), false)
	err := f.dash.Load(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, f.api.count("GET applicants"), "no fetch without a token")
}

func TestStats_Percentages(t *testing.T) {
	var list []models.Applicant
	for i := uint(1); i <= 10; i++ {
		status := models.ApplicantStatusPending
		switch {
		case i <= 3:
			status = models.ApplicantStatusApproved
		case i <= 5:
			status = models.ApplicantStatusRejected
		case i == 6:
			status = ""
		}
		list = append(list, applicant(i, "A", "B", "Genealogy", status))
	}
	f := newFixture(t, newFakeAPI(list...), true)
	require.NoError(t, f.dash.Load(context.Background()))

	s := f.dash.Stats()
	assert.Equal(t, Stats{Total: 10, Pending: 5, Approved: 3, Rejected: 2}, s)
	assert.Equal(t, 50, s.Percent(s.Pending))
	assert.Equal(t, 30, s.Percent(s.Approved))
	assert.Equal(t, 20, s.Percent(s.Rejected))
	assert.Equal(t, 0, Stats{}.Percent(0))
	assert.Equal(t, 33, Stats{Total: 3}.Percent(1))
	assert.Equal(t, 67, Stats{Total: 3}.Percent(2))
}

func TestFiltered_AndSemantics(t *testing.T) {
	f := newFixture(t, newFakeAPI(
		applicant(1, "Jane", "Doe", "Computer Vision", models.ApplicantStatusApproved),
		applicant(2, "Jane", "Roe", "Computer Vision", models.ApplicantStatusPending),
		applicant(3, "Janet", "Poe", "Genealogy", models.ApplicantStatusApproved),
		applicant(4, "Mark", "Lee", "Computer Vision", models.ApplicantStatusApproved),
		applicant(5, "Ann", "Moe", "Genealogy", ""),
	), true)
	require.NoError(t, f.dash.Load(context.Background()))

	ids := func(list []models.Applicant) []uint {
		out := []uint{}
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []uint
	}{
		{"jane + project + approved", Filter{Search: "jane", Project: "Computer Vision", Status: "approved"}, []uint{1}},
		{"search matches full name", Filter{Search: "jane doe"}, []uint{1}},
		{"search matches project", Filter{Search: "genea"}, []uint{3, 5}},
		{"search matches email", Filter{Search: "mark@"}, []uint{4}},
		{"all status", Filter{Status: StatusAll}, []uint{1, 2, 3, 4, 5}},
		{"blank status is pending", Filter{Status: "pending"}, []uint{2, 5}},
		{"no match", Filter{Search: "zzz"}, []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(f.dash.Filtered(tt.filter)))
		})
	}
}

func TestApproveDecline_PatchesRow(t *testing.T) {
	f := newFixture(t, newFakeAPI(applicant(1, "Jane", "Doe", "Genealogy", "")), true)
	ctx := context.Background()
	require.NoError(t, f.dash.Load(ctx))

	assert.True(t, f.dash.CanApprove(1))
	assert.True(t, f.dash.CanDecline(1))

	require.NoError(t, f.dash.Approve(ctx, 1))
	a, _ := f.dash.Find(1)
	assert.Equal(t, models.ApplicantStatusApproved, a.Status)
	assert.False(t, f.dash.CanApprove(1))
	assert.True(t, f.dash.CanDecline(1))

	require.NoError(t, f.dash.Decline(ctx, 1))
	assert.True(t, f.dash.CanApprove(1))
	assert.False(t, f.dash.CanDecline(1))

	require.NoError(t, f.dash.SetStatus(ctx, 1, models.ApplicantStatusPending))
	a, _ = f.dash.Find(1)
	assert.Equal(t, models.ApplicantStatusPending, a.Status)
}

func TestActions_FailureLeavesRowUntouched(t *testing.T) {
	f := newFixture(t, newFakeAPI(applicant(1, "Jane", "Doe", "Genealogy", "")), true)
	ctx := context.Background()
	require.NoError(t, f.dash.Load(ctx))

	err := f.dash.Approve(ctx, 99)
	require.Error(t, err)
	a, _ := f.dash.Find(1)
	assert.Equal(t, models.ApplicantStatus(""), a.Status)
	assert.False(t, f.dash.InFlight(99))
}

func TestInFlight_BlocksOnlyThatRow(t *testing.T) {
	api := newFakeAPI(
		applicant(1, "Jane", "Doe", "Genealogy", ""),
		applicant(2, "John", "Roe", "Genealogy", ""),
	)
	f := newFixture(t, api, true)
	ctx := context.Background()
	require.NoError(t, f.dash.Load(ctx))

	gate := make(chan struct{})
	api.mu.Lock()
	api.gate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- f.dash.Approve(ctx, 1) }()

	require.Eventually(t, func() bool { return f.dash.InFlight(1) }, time.Second, 5*time.Millisecond)
	assert.False(t, f.dash.CanApprove(1))
	assert.False(t, f.dash.CanDecline(1))
	assert.True(t, f.dash.CanApprove(2), "other rows stay actionable")

	assert.ErrorIs(t, f.dash.Decline(ctx, 1), ErrInFlight)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, api.count("PUT applicants/approve"))
	assert.Zero(t, api.count("PUT applicants/decline"), "rejected action issued no call")
	assert.False(t, f.dash.InFlight(1))
}

func TestExportCSV_IgnoresFilter(t *testing.T) {
	a := applicant(1, "Jane", `Say "Hi"`, "Computer Vision", models.ApplicantStatusApproved)
	b := applicant(2, "John", "Roe", "Genealogy", "")
	b.CreatedAt = time.Time{}
	f := newFixture(t, newFakeAPI(a, b), true)
	require.NoError(t, f.dash.Load(context.Background()))
	require.Len(t, f.dash.Filtered(Filter{Project: "Genealogy"}), 1)

	var buf bytes.Buffer
	require.NoError(t, f.dash.ExportCSV(&buf))
	want := `"First Name","Last Name","Email","Degree","Project","Status","Applied On"` + "\n" +
		`"Jane","Say ""Hi""","jane@example.com","BS","Computer Vision","approved","2024-03-01T09:30:00.250Z"` + "\n" +
		`"John","Roe","john@example.com","BS","Genealogy","pending",""`
	assert.Equal(t, want, buf.String())
}

func TestExportCSV_Empty(t *testing.T) {
	f := newFixture(t, newFakeAPI(), true)
	require.NoError(t, f.dash.Load(context.Background()))
	var buf bytes.Buffer
	assert.ErrorIs(t, f.dash.ExportCSV(&buf), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestOpenResume_SecondPreviewRevokesFirst(t *testing.T) {
	f := newFixture(t, newFakeAPI(applicant(1, "Jane", "Doe", "Genealogy", "")), true)
	ctx := context.Background()

	first, err := f.dash.OpenResume(ctx, 1)
	require.NoError(t, err)
	obj, ok := f.blobs.Get(first.URL)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.True(t, strings.HasSuffix(first.DownloadURL, "/applicants/1/resume?download=true"))

	second, err := f.dash.OpenResume(ctx, 2)
	require.NoError(t, err)
	_, ok = f.blobs.Get(first.URL)
	assert.False(t, ok, "first preview revoked")
	assert.Equal(t, 1, f.blobs.Live())

	current, ok := f.dash.CurrentPreview()
	require.True(t, ok)
	assert.Equal(t, second.URL, current.URL)

	f.dash.CloseResume()
	assert.Zero(t, f.blobs.Live())
	_, ok = f.dash.CurrentPreview()
	assert.False(t, ok)
}

func TestOpenResume_FailureClosesPreview(t *testing.T) {
	api := newFakeAPI()
	f := newFixture(t, api, true)
	ctx := context.Background()

	_, err := f.dash.OpenResume(ctx, 1)
	require.NoError(t, err)

	api.mu.Lock()
	api.resumeFail = true
	api.mu.Unlock()

	_, err = f.dash.OpenResume(ctx, 2)
	assert.ErrorIs(t, err, ErrPreviewUnavailable)
	assert.Zero(t, f.blobs.Live())
}

func TestSave_CreatesOrUpdatesThenReloads(t *testing.T) {
	api := newFakeAPI(applicant(1, "Jane", "Doe", "Genealogy", ""))
	f := newFixture(t, api, true)
	ctx := context.Background()
	require.NoError(t, f.dash.Load(ctx))

	require.NoError(t, f.dash.Save(ctx, 0, models.ApplicantInput{
		FirstName: "New", LastName: "Person", Age: 30, Email: "new@example.com", ProjectAppliedFor: "Genealogy",
	}))
	assert.Len(t, f.dash.Applicants(), 2)
	assert.Equal(t, 2, api.count("GET applicants"))

	require.NoError(t, f.dash.Save(ctx, 1, models.ApplicantInput{FirstName: "Janet", LastName: "Doe", Email: "jane@example.com"}))
	a, _ := f.dash.Find(1)
	assert.Equal(t, "Janet", a.FirstName)
	assert.Equal(t, 3, api.count("GET applicants"))
}

func TestDelete(t *testing.T) {
	f := newFixture(t, newFakeAPI(applicant(1, "Jane", "Doe", "Genealogy", "")), true)
	ctx := context.Background()
	require.NoError(t, f.dash.Load(ctx))
	_, err := f.dash.OpenResume(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, f.dash.Delete(ctx, 1))
	assert.Empty(t, f.dash.Applicants())
	assert.Zero(t, f.blobs.Live())
}

func TestLogout_ClearsTokens(t *testing.T) {
	f := newFixture(t, newFakeAPI(), true)
	ctx := context.Background()
	require.NoError(t, f.dash.Logout(ctx))
	token, _ := f.tokens.Token(ctx)
	assert.Empty(t, token)
	assert.Equal(t, 1, f.api.count("POST admin/logout"))
	assert.ErrorIs(t, f.dash.Load(ctx), ErrUnauthenticated)
}
