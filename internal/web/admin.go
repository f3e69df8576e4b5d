package web

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"lifewood/internal/apiclient"
	"lifewood/internal/dashboard"
	"lifewood/internal/models"
	"lifewood/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Login messages.
const (
	MsgLoginFailed  = "Login failed"
	MsgNetworkError = "Network error. Please try again."
)

const dashboardPath = "/admin/dashboard"

// LoginPage renders the admin login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if token, _ := s.tokensFor(c).Token(c.UserContext()); token != "" {
		return c.Redirect(dashboardPath)
	}
	return c.Render("login", s.page(c, "Admin Login", "", fiber.Map{
		"Email":  "",
		"Errors": validation.Errors{},
	}))
}

// LoginPost validates the credentials locally, then signs in through the API.
func (s *Server) LoginPost(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	errs := validation.Errors{}
	if msg := validation.Email(email); msg != "" {
		errs[validation.FieldEmail] = msg
	}
	if msg := validation.Required(password, validation.MsgPasswordRequired); msg != "" {
		errs[validation.FieldPassword] = msg
	}
	if len(errs) > 0 {
		c.Status(fiber.StatusBadRequest)
		return c.Render("login", s.page(c, "Admin Login", "", fiber.Map{"Email": email, "Errors": errs}))
	}

	if _, err := s.adminClient(c).SignIn(c.UserContext(), email, password); err != nil {
		c.Status(fiber.StatusUnauthorized)
		return c.Render("login", s.page(c, "Admin Login", loginError(err), fiber.Map{
			"Email":  email,
			"Errors": validation.Errors{},
		}))
	}
	return c.Redirect(dashboardPath, fiber.StatusSeeOther)
}

func loginError(err error) string {
	if errors.Is(err, apiclient.ErrNetwork) {
		return MsgNetworkError
	}
	if apiErr, ok := apiclient.AsError(err); ok {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return MsgLoginFailed
}

// Logout revokes the token and starts a fresh session.
func (s *Server) Logout(c *fiber.Ctx) error {
	sess := currentSession(c)
	_ = s.dashboardFor(c).Logout(c.UserContext())
	s.states.drop(sess.ID())
	if err := sess.Regenerate(); err != nil {
		return err
	}
	return c.Redirect("/admin/login", fiber.StatusSeeOther)
}

func filterFrom(c *fiber.Ctx) dashboard.Filter {
	return dashboard.Filter{
		Search:  c.Query("search"),
		Project: c.Query("project"),
		Status:  c.Query("status", dashboard.StatusAll),
	}
}

// DashboardPage loads the applicant list and renders stats, filters and rows.
func (s *Server) DashboardPage(c *fiber.Ctx) error {
	dash := s.dashboardFor(c)
	ctx := c.UserContext()

	loadErr := ""
	if err := dash.Load(ctx); err != nil {
		if errors.Is(err, dashboard.ErrUnauthenticated) {
			return c.Redirect("/admin/login")
		}
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Status() == fiber.StatusUnauthorized {
			_ = s.tokensFor(c).Clear(ctx)
			flashError(c, "Your session has expired. Please sign in again.")
			return c.Redirect("/admin/login")
		}
		loadErr = "Failed to load applicants"
		if errors.Is(err, apiclient.ErrNetwork) {
			loadErr = MsgNetworkError
		}
	}

	filter := filterFrom(c)
	rows := []fiber.Map{}
	for _, a := range dash.Filtered(filter) {
		rows = append(rows, fiber.Map{
			"Applicant":  a,
			"Status":     string(a.Status.Normalize()),
			"CanApprove": dash.CanApprove(a.ID),
			"CanDecline": dash.CanDecline(a.ID),
			"Busy":       dash.InFlight(a.ID),
		})
	}

	data := fiber.Map{
		"Stats":    dash.Stats(),
		"Rows":     rows,
		"Filter":   filter,
		"Projects": s.projectList(ctx),
		"Statuses": []string{
			string(models.ApplicantStatusPending),
			string(models.ApplicantStatusApproved),
			string(models.ApplicantStatusRejected),
		},
		"Return": c.OriginalURL(),
	}
	if preview, ok := dash.CurrentPreview(); ok {
		data["Preview"] = preview
	}
	if edit := c.Query("edit"); edit != "" {
		if edit == "new" {
			data["Edit"] = fiber.Map{"ID": uint(0), "Input": models.ApplicantInput{}}
		} else if id, err := strconv.ParseUint(edit, 10, 64); err == nil {
			if a, ok := dash.Find(uint(id)); ok {
				data["Edit"] = fiber.Map{"ID": a.ID, "Input": models.InputFrom(a)}
			}
		}
	}

	stats := dash.Stats()
	data["Percent"] = fiber.Map{
		"Pending":  stats.Percent(stats.Pending),
		"Approved": stats.Percent(stats.Approved),
		"Rejected": stats.Percent(stats.Rejected),
	}
	return c.Render("dashboard", s.page(c, "Admin Dashboard", loadErr, data))
}

// backToDashboard redirects to the posted return URL when it points at the
// dashboard.
func backToDashboard(c *fiber.Ctx) error {
	target := c.FormValue("return")
	if u, err := url.Parse(target); err != nil || u.Host != "" || u.Path != dashboardPath {
		target = dashboardPath
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

func applicantID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid applicant id")
	}
	return uint(id), nil
}

// actionError turns a failed row action into a flash message.
func actionError(c *fiber.Ctx, err error, fallback string) {
	switch {
	case errors.Is(err, dashboard.ErrInFlight):
		flashError(c, "An update for this applicant is already in progress")
	case errors.Is(err, apiclient.ErrNetwork):
		flashError(c, MsgNetworkError)
	default:
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Message() != "" {
			flashError(c, apiErr.Message())
			return
		}
		flashError(c, fallback)
	}
}

// ApproveApplicant approves one row.
func (s *Server) ApproveApplicant(c *fiber.Ctx) error {
	id, err := applicantID(c)
	if err != nil {
		return err
	}
	if err := s.dashboardFor(c).Approve(c.UserContext(), id); err != nil {
		actionError(c, err, "Failed to approve applicant")
	} else {
		flashNotice(c, "Applicant approved")
	}
	return backToDashboard(c)
}

// DeclineApplicant declines one row.
func (s *Server) DeclineApplicant(c *fiber.Ctx) error {
	id, err := applicantID(c)
	if err != nil {
		return err
	}
	if err := s.dashboardFor(c).Decline(c.UserContext(), id); err != nil {
		actionError(c, err, "Failed to decline applicant")
	} else {
		flashNotice(c, "Applicant declined")
	}
	return backToDashboard(c)
}

// SetApplicantStatus sets the posted status.
func (s *Server) SetApplicantStatus(c *fiber.Ctx) error {
	id, err := applicantID(c)
	if err != nil {
		return err
	}
	status, err := models.ParseApplicantStatus(c.FormValue("status"))
	if err != nil {
		flashError(c, "Unknown status")
		return backToDashboard(c)
	}
	if err := s.dashboardFor(c).SetStatus(c.UserContext(), id, status); err != nil {
		actionError(c, err, "Failed to update status")
	} else {
		flashNotice(c, "Status updated")
	}
	return backToDashboard(c)
}

// DeleteApplicant removes one row.
func (s *Server) DeleteApplicant(c *fiber.Ctx) error {
	id, err := applicantID(c)
	if err != nil {
		return err
	}
	if err := s.dashboardFor(c).Delete(c.UserContext(), id); err != nil {
		actionError(c, err, "Failed to delete applicant")
	} else {
		flashNotice(c, validation.MsgApplicantDeleted)
	}
	return backToDashboard(c)
}

// SaveApplicant creates (no id) or updates (with id) an applicant.
func (s *Server) SaveApplicant(c *fiber.Ctx) error {
	var id uint
	if c.Params("id") != "" {
		var err error
		if id, err = applicantID(c); err != nil {
			return err
		}
	}

	age, err := strconv.Atoi(strings.TrimSpace(c.FormValue("age")))
	if err != nil {
		flashError(c, validation.MsgAgeNotNumber)
		return backToDashboard(c)
	}
	in := models.ApplicantInput{
		FirstName:          c.FormValue("firstName"),
		LastName:           c.FormValue("lastName"),
		Age:                age,
		Degree:             c.FormValue("degree"),
		RelevantExperience: c.FormValue("relevantExperience"),
		Email:              c.FormValue("email"),
		ProjectAppliedFor:  c.FormValue("projectAppliedFor"),
		Status:             c.FormValue("status"),
	}
	if err := s.dashboardFor(c).Save(c.UserContext(), id, in); err != nil {
		actionError(c, err, "Failed to save applicant")
	} else if id == 0 {
		flashNotice(c, "Applicant added")
	} else {
		flashNotice(c, "Applicant updated")
	}
	return backToDashboard(c)
}

// OpenPreview fetches a resume into a blob URL shown in the preview pane.
func (s *Server) OpenPreview(c *fiber.Ctx) error {
	id, err := applicantID(c)
	if err != nil {
		return err
	}
	if _, err := s.dashboardFor(c).OpenResume(c.UserContext(), id); err != nil {
		flashError(c, dashboard.MsgPreviewUnavailable)
	}
	return backToDashboard(c)
}

// ClosePreview releases the preview.
func (s *Server) ClosePreview(c *fiber.Ctx) error {
	s.dashboardFor(c).CloseResume()
	return backToDashboard(c)
}

// ExportCSV downloads every applicant as CSV, regardless of the filter.
func (s *Server) ExportCSV(c *fiber.Ctx) error {
	dash := s.dashboardFor(c)
	if err := dash.Load(c.UserContext()); err != nil {
		if errors.Is(err, dashboard.ErrUnauthenticated) {
			return c.Redirect("/admin/login")
		}
		actionError(c, err, "Failed to load applicants")
		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	}

	var b strings.Builder
	if err := dash.ExportCSV(&b); err != nil {
		if errors.Is(err, dashboard.ErrNothingToExport) {
			flashError(c, dashboard.MsgNothingToExport)
			return c.Redirect(dashboardPath, fiber.StatusSeeOther)
		}
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(dashboard.ExportFileName)
	return c.SendString(b.String())
}
