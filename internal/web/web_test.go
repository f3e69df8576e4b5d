package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"lifewood/internal/config"
	"lifewood/internal/models"
	"lifewood/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@lifewood.com"
	adminPassword = "correct-horse-1"
	adminToken    = "tok-123"
)

// fakeAPI is a minimal recruiting API.
type fakeAPI struct {
	mu         sync.Mutex
	applicants []models.Applicant
	created    []map[string]string
	calls      []string
	auth       []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{applicants: []models.Applicant{
		{ID: 1, FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com", Degree: "BS CS",
			ProjectAppliedFor: "AI Data Extraction", Status: models.ApplicantStatusPending, HasResume: true,
			CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{ID: 2, FirstName: "Ben", LastName: "Cruz", Email: "ben@example.com", Degree: "BS IT",
			ProjectAppliedFor: "Machine Learning Enablement", Status: models.ApplicantStatusApproved},
	}}
	ts := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(ts.Close)
	return f, ts
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	f.calls = append(f.calls, r.Method+" "+path)
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodGet && path == "projects":
		writeJSON(http.StatusOK, []map[string]string{
			{"id": "ai-data-extraction", "title": "AI Data Extraction"},
			{"id": "ml-enablement", "title": "Machine Learning Enablement"},
		})
	case r.Method == http.MethodPost && path == "admin/login":
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != adminEmail || body.Password != adminPassword {
			writeJSON(http.StatusUnauthorized, fiber.Map{"success": false, "message": "Invalid email or password"})
			return
		}
		writeJSON(http.StatusOK, models.AuthResponse{
			Success: true, Message: "Login successful", Token: adminToken,
			Admin: &models.Admin{ID: 1, Email: adminEmail},
		})
	case r.Method == http.MethodPost && path == "admin/logout":
		writeJSON(http.StatusOK, fiber.Map{"message": "Logged out"})
	case r.Method == http.MethodGet && path == "applicants":
		writeJSON(http.StatusOK, f.applicants)
	case r.Method == http.MethodPost && path == "applicants":
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeJSON(http.StatusBadRequest, fiber.Map{"error": err.Error()})
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		if fh, ok := r.MultipartForm.File["resume"]; ok {
			fields["resume"] = fh[0].Filename
		}
		for _, a := range f.applicants {
			if a.Email == fields["email"] {
				writeJSON(http.StatusConflict, fiber.Map{"error": "Email already exists"})
				return
			}
		}
		f.created = append(f.created, fields)
		a := models.Applicant{ID: uint(len(f.applicants) + 1), Email: fields["email"], FirstName: fields["firstName"]}
		f.applicants = append(f.applicants, a)
		writeJSON(http.StatusCreated, a)
	case r.Method == http.MethodPut && strings.HasSuffix(path, "/approve"):
		var id uint
		_, _ = fmt.Sscanf(path, "applicants/%d/approve", &id)
		for i := range f.applicants {
			if f.applicants[i].ID == id {
				f.applicants[i].Status = models.ApplicantStatusApproved
				writeJSON(http.StatusOK, f.applicants[i])
				return
			}
		}
		writeJSON(http.StatusNotFound, fiber.Map{"error": "Applicant not found"})
	case r.Method == http.MethodGet && path == "applicants/1/resume":
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(testutil.PDF())
	default:
		writeJSON(http.StatusNotFound, fiber.Map{"error": "not found"})
	}
}

func (f *fakeAPI) createdForms() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.created...)
}

func (f *fakeAPI) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

// browser carries cookies between requests against the app.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newTestServer(t *testing.T) (*browser, *Server, *fakeAPI) {
	t.Helper()
	api, ts := newFakeAPI(t)
	srv, err := NewServer(&config.Config{
		APIBaseURL:    ts.URL + "/api",
		SessionSecret: "test-secret",
	}, nil, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &browser{t: t, app: srv.NewApp(), cookies: map[string]string{}}, srv, api
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string, header ...string) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postFile(path string, fields map[string]string, field, name, contentType string, data []byte) (*http.Response, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(b.t, err)
	_, _ = part.Write(data)
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) login() {
	b.t.Helper()
	resp, _ := b.post("/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	require.Equal(b.t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, "/admin/dashboard", resp.Header.Get("Location"))
}

func TestPublicPages(t *testing.T) {
	b, _, _ := newTestServer(t)

	resp, body := b.get("/")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome to Lifewood")
	assert.Contains(t, body, "AI Data Extraction")
	assert.Contains(t, body, "2024 Lifewood")

	_, body = b.get("/about")
	assert.Contains(t, body, "Computer Vision")

	_, body = b.get("/projects")
	assert.Contains(t, body, "Machine Learning Enablement")
	assert.Contains(t, body, "/register?project=")

	resp, _ = b.get("/login")
	assert.Equal(t, fiber.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestPagesFollowViewport(t *testing.T) {
	b, _, _ := newTestServer(t)

	resp, body := b.get("/", "Sec-CH-Viewport-Width", "360")
	assert.Contains(t, resp.Header.Get("Accept-CH"), "Sec-CH-Viewport-Width")
	assert.Contains(t, body, `class="mobile"`)
	assert.Contains(t, body, "<summary>Menu</summary>")

	_, body = b.get("/", "Sec-CH-Viewport-Width", "900")
	assert.Contains(t, body, `class="tablet"`)

	_, body = b.get("/")
	assert.Contains(t, body, `class="desktop"`)
}

func TestUnknownRouteRendersErrorPage(t *testing.T) {
	b, _, _ := newTestServer(t)
	resp, body := b.get("/nope")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Not Found")
}

func TestRegisterStepGate(t *testing.T) {
	b, _, _ := newTestServer(t)

	_, body := b.get("/register?project=AI+Data+Extraction")
	assert.Contains(t, body, "Personal Info")
	assert.Regexp(t, `value="AI Data Extraction"\s+selected`, body)

	resp, _ := b.post("/register", url.Values{"action": {"next"}, "firstName": {"Jo"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	_, body = b.get("/register")
	assert.Contains(t, body, "Last name is required")
	assert.NotContains(t, body, "First name is required")
	assert.Contains(t, body, `value="Jo"`)
}

func TestRegisterSubmitFlow(t *testing.T) {
	b, _, api := newTestServer(t)

	b.post("/register", url.Values{
		"action":            {"next"},
		"firstName":         {"Jo"},
		"lastName":          {"Dela Cruz"},
		"email":             {"jo@example.com"},
		"age":               {"24"},
		"degree":            {"BS Math"},
		"projectAppliedFor": {"AI Data Extraction"},
	})
	_, body := b.get("/register")
	require.Contains(t, body, "relevantExperience")

	b.post("/register", url.Values{"action": {"next"}, "relevantExperience": {"Two years of labeling"}})
	b.postFile("/register", map[string]string{"action": "next"}, "resume", "cv.pdf", "application/pdf", testutil.PDF())

	_, body = b.get("/register")
	assert.Contains(t, body, "Summary")
	assert.Contains(t, body, "cv.pdf")

	resp, _ := b.post("/register", url.Values{"action": {"submit"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body = b.get("/")
	assert.Contains(t, body, "Application submitted successfully!")

	created := api.createdForms()
	require.Len(t, created, 1)
	assert.Equal(t, "jo@example.com", created[0]["email"])
	assert.Equal(t, "24", created[0]["age"])
	assert.Equal(t, "cv.pdf", created[0]["resume"])

	_, body = b.get("/register")
	assert.Contains(t, body, "Personal Info")
	assert.NotContains(t, body, "jo@example.com")
}

func TestRegisterOversizedUploadShowsResumeError(t *testing.T) {
	b, srv, _ := newTestServer(t)

	app := fiber.New(fiber.Config{ErrorHandler: srv.errorHandler})
	app.Post("/register", func(*fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/register", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.Equal(t, resumeRejectedURL, location)

	b.post("/register", url.Values{
		"action": {"next"}, "firstName": {"Jo"}, "lastName": {"Cruz"}, "email": {"jo@example.com"},
		"age": {"30"}, "degree": {"BS"}, "projectAppliedFor": {"AI Data Extraction"},
	})
	b.post("/register", url.Values{"action": {"next"}, "relevantExperience": {"lots"}})

	_, body := b.get(location)
	assert.Contains(t, body, "File size must be less than 5MB")
	assert.Contains(t, body, `id="resume"`)
}

func TestRegisterPDFPreviewIsServedAsBlob(t *testing.T) {
	b, srv, _ := newTestServer(t)
	b.post("/register", url.Values{
		"action": {"next"}, "firstName": {"Jo"}, "lastName": {"Cruz"}, "email": {"jo@example.com"},
		"age": {"30"}, "degree": {"BS"}, "projectAppliedFor": {"AI Data Extraction"},
	})
	b.post("/register", url.Values{"action": {"next"}, "relevantExperience": {"lots"}})
	b.postFile("/register", map[string]string{"action": "back", "to": "2"}, "resume", "cv.pdf", "application/pdf", testutil.PDF())

	_, body := b.get("/register")
	blobURL := regexp.MustCompile(`/blob/[0-9a-f-]+`).FindString(body)
	require.NotEmpty(t, blobURL)
	assert.Equal(t, 1, srv.blobs.Live())

	resp, data := b.get(blobURL)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(testutil.PDF()), data)

	b.postFile("/register", map[string]string{"action": "back", "to": "2"}, "resume", "cv2.pdf", "application/pdf", testutil.PDF())
	assert.Equal(t, 1, srv.blobs.Live(), "replacing the resume releases the old preview")
	resp, _ = b.get(blobURL)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminRequiresLogin(t *testing.T) {
	b, _, _ := newTestServer(t)
	resp, _ := b.get("/admin/dashboard")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestAdminLoginValidation(t *testing.T) {
	b, _, api := newTestServer(t)

	resp, body := b.post("/admin/login", url.Values{"email": {""}, "password": {""}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Email is required")
	assert.Contains(t, body, "Password is required")

	_, body = b.post("/admin/login", url.Values{"email": {"nope"}, "password": {"x"}})
	assert.Contains(t, body, "Email is invalid")
	assert.Zero(t, api.count("POST admin/login"), "invalid input never reaches the API")

	resp, body = b.post("/admin/login", url.Values{"email": {adminEmail}, "password": {"wrong"}})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or password")
}

func TestLoginErrorMessages(t *testing.T) {
	b, _, _ := newTestServer(t)
	srv, err := NewServer(&config.Config{APIBaseURL: "http://127.0.0.1:1/api"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	b.app = srv.NewApp()

	_, body := b.post("/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	assert.Contains(t, body, "Network error. Please try again.")
}

func TestDashboardFlow(t *testing.T) {
	b, _, api := newTestServer(t)
	b.login()

	_, body := b.get("/admin/dashboard")
	assert.Contains(t, body, "Ana Reyes")
	assert.Contains(t, body, "Ben Cruz")
	assert.Contains(t, body, "1 (50%)")
	assert.Contains(t, body, adminEmail)

	_, body = b.get("/admin/dashboard?search=ben")
	assert.NotContains(t, body, "Ana Reyes")
	assert.Contains(t, body, "Ben Cruz")

	resp, _ := b.post("/admin/applicants/1/approve", url.Values{"return": {"/admin/dashboard?search=ana"}})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard?search=ana", resp.Header.Get("Location"))
	assert.Equal(t, 1, api.count("PUT applicants/1/approve"))

	_, body = b.get("/admin/dashboard")
	assert.Contains(t, body, "Applicant approved")
	assert.Contains(t, body, "2 (100%)")

	api.mu.Lock()
	assert.Contains(t, api.auth, "Bearer "+adminToken)
	api.mu.Unlock()
}

func TestDashboardRejectsForeignReturnURL(t *testing.T) {
	b, _, _ := newTestServer(t)
	b.login()
	resp, _ := b.post("/admin/applicants/1/approve", url.Values{"return": {"https://evil.example/admin/dashboard"}})
	assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
}

func TestDashboardExport(t *testing.T) {
	b, _, _ := newTestServer(t)
	b.login()

	resp, body := b.get("/admin/dashboard/export")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "applicants.csv")
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"First Name","Last Name","Email","Degree","Project","Status","Applied On"`, lines[0])
	assert.Equal(t, `"Ana","Reyes","ana@example.com","BS CS","AI Data Extraction","pending","2024-03-01T08:00:00.000Z"`, lines[1])
}

func TestDashboardResumePreview(t *testing.T) {
	b, srv, _ := newTestServer(t)
	b.login()

	b.post("/admin/applicants/1/preview", url.Values{})
	_, body := b.get("/admin/dashboard")
	blobURL := regexp.MustCompile(`/blob/[0-9a-f-]+`).FindString(body)
	require.NotEmpty(t, blobURL)
	assert.Equal(t, 1, srv.blobs.Live())

	resp, _ := b.get(blobURL)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	b.post("/admin/applicants/2/preview", url.Values{})
	_, body = b.get("/admin/dashboard")
	assert.Contains(t, body, "Unable to preview resume. Try downloading instead.")
	assert.Equal(t, 0, srv.blobs.Live(), "a failed preview releases the previous one")

	b.post("/admin/applicants/1/preview", url.Values{})
	b.post("/admin/preview/close", url.Values{})
	assert.Equal(t, 0, srv.blobs.Live())
}

func TestLogout(t *testing.T) {
	b, _, api := newTestServer(t)
	b.login()

	resp, _ := b.post("/admin/logout", url.Values{})
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
	assert.Equal(t, 1, api.count("POST admin/logout"))

	resp, _ = b.get("/admin/dashboard")
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}
