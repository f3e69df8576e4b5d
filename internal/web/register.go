package web

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"lifewood/internal/registration"
	"lifewood/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// Form actions posted by the register page.
const (
	actionNext   = "next"
	actionBack   = "back"
	actionSubmit = "submit"
)

var draftFields = []string{
	validation.FieldFirstName,
	validation.FieldLastName,
	validation.FieldEmail,
	validation.FieldAge,
	validation.FieldDegree,
	validation.FieldProject,
	validation.FieldRelevantExperience,
}

// resumeRejectedURL is where an upload over the request limit lands.
const resumeRejectedURL = "/register?rejected=size"

// RegisterPage renders the current step of the session's draft.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	draft := s.draftFor(c, c.Query("project"))
	if c.Query("rejected") == "size" {
		draft.RejectResume(validation.MsgResumeTooLarge)
	}
	view := draft.View()

	steps := make([]fiber.Map, registration.StepCount)
	for i := range steps {
		step := registration.Step(i)
		steps[i] = fiber.Map{
			"Index":   i,
			"Title":   step.Title(),
			"Current": step == view.Step,
			"Done":    step < view.Step,
		}
	}

	errMsg := view.Banner
	return c.Render("register", s.page(c, "Application Form", errMsg, fiber.Map{
		"Draft":    view,
		"Steps":    steps,
		"Projects": s.projectList(c.UserContext()),
		"MaxMB":    validation.MaxResumeBytes / (1024 * 1024),
	}))
}

// RegisterPost applies the posted fields and performs the requested action.
func (s *Server) RegisterPost(c *fiber.Ctx) error {
	draft := s.draftFor(c, "")

	values := map[string]string{}
	for _, name := range draftFields {
		if v, ok := postedValue(c, name); ok {
			values[name] = v
		}
	}
	draft.SetFields(values)

	file, err := c.FormFile(validation.FieldResume)
	switch {
	case err == nil:
		resume, err := readResume(file)
		if err != nil {
			return err
		}
		if _, err := draft.SelectResume(resume); err != nil {
			flashError(c, "Unable to preview this file.")
		}
	case !errors.Is(err, fasthttp.ErrMissingFile) && !errors.Is(err, fasthttp.ErrNoMultipartForm):
		return err
	}

	switch c.FormValue("action") {
	case actionNext:
		draft.Next()
	case actionBack:
		to, err := strconv.Atoi(c.FormValue("to"))
		if err != nil {
			to = int(draft.Step()) - 1
		}
		draft.Back(registration.Step(to))
	case actionSubmit:
		res, err := draft.Submit(c.UserContext())
		if err != nil {
			flashError(c, registration.BannerSubmitFailed)
			break
		}
		if res.Redirect != "" {
			s.resetDraft(c)
			flashNotice(c, res.Notice)
			return c.Redirect(res.Redirect, fiber.StatusSeeOther)
		}
	}

	return c.Redirect("/register", fiber.StatusSeeOther)
}

// postedValue reads a form field and reports whether it was posted at all,
// so fields of other steps are not blanked.
func postedValue(c *fiber.Ctx, name string) (string, bool) {
	if args := c.Request().PostArgs(); args.Has(name) {
		return string(args.Peek(name)), true
	}
	if form, err := c.MultipartForm(); err == nil {
		if v, ok := form.Value[name]; ok && len(v) > 0 {
			return v[0], true
		}
	}
	return "", false
}

// readResume loads an uploaded file. Reads stop one byte past the size
// limit so oversize files are still reported as too large.
func readResume(fh *multipart.FileHeader) (*registration.ResumeFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, validation.MaxResumeBytes+1))
	if err != nil {
		return nil, err
	}
	return &registration.ResumeFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
