// Package registration drives the four-step application form: personal
// details, experience, resume, and a final review before submit.
package registration

import (
	"errors"
	"strings"
	"sync"

	"lifewood/internal/apiclient"
	"lifewood/internal/blob"
	"lifewood/internal/featureflags"
	"lifewood/internal/validation"
)

// Step is a position in the form.
type Step int

// Steps in order.
const (
	StepPersonal Step = iota
	StepExperience
	StepResume
	StepSummary
)

// StepCount is the number of steps.
const StepCount = 4

var stepTitles = [StepCount]string{"Personal Info", "Experience", "Resume", "Summary"}

// Title is the label shown in the stepper.
func (s Step) Title() string {
	if s < 0 || int(s) >= StepCount {
		return ""
	}
	return stepTitles[s]
}

// stepFields lists the error keys each step owns.
var stepFields = map[Step][]string{
	StepPersonal: {
		validation.FieldFirstName,
		validation.FieldLastName,
		validation.FieldEmail,
		validation.FieldAge,
		validation.FieldDegree,
		validation.FieldProject,
	},
	StepExperience: {validation.FieldRelevantExperience},
	StepResume:     {validation.FieldResume},
}

// Preview kinds for a selected resume.
const (
	PreviewNone = ""
	PreviewPDF  = "pdf"
	PreviewDoc  = "doc"
)

// ErrSubmitting is returned when a submit is already running for the draft.
var ErrSubmitting = errors.New("submission already in progress")

// Fields are the form values as typed. Age stays text until submit.
type Fields struct {
	FirstName          string
	LastName           string
	Email              string
	Age                string
	Degree             string
	ProjectAppliedFor  string
	RelevantExperience string
}

// ResumeFile is a file picked on the resume step.
type ResumeFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the file length in bytes.
func (f *ResumeFile) Size() int64 {
	return int64(len(f.Data))
}

// View is a snapshot of a draft for rendering.
type View struct {
	Step        Step
	Fields      Fields
	Errors      validation.Errors
	Banner      string
	ResumeName  string
	PreviewURL  string
	PreviewKind string
	Submitting  bool
}

// Draft is one session's in-progress application. It is safe for
// concurrent use.
type Draft struct {
	client  *apiclient.Client
	flags   *featureflags.Manager
	subject string

	mu          sync.Mutex
	step        Step
	fields      Fields
	resume      *ResumeFile
	preview     *blob.Lease
	previewKind string
	errors      validation.Errors
	banner      string
	submitting  bool
}

// NewDraft returns an empty draft. project pre-fills the project field.
// subject keys percentage rollouts of feature flags, usually the session id.
func NewDraft(client *apiclient.Client, flags *featureflags.Manager, blobs *blob.Registry, subject, project string) *Draft {
	if flags == nil {
		flags = featureflags.NewManager("")
	}
	return &Draft{
		client:  client,
		flags:   flags,
		subject: subject,
		preview: blob.NewLease(blobs),
		fields:  Fields{ProjectAppliedFor: strings.TrimSpace(project)},
		errors:  validation.Errors{},
	}
}

// View returns a copy of the current state.
func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	errs := make(validation.Errors, len(d.errors))
	errs.Merge(d.errors)
	v := View{
		Step:        d.step,
		Fields:      d.fields,
		Errors:      errs,
		Banner:      d.banner,
		PreviewURL:  d.preview.URL(),
		PreviewKind: d.previewKind,
		Submitting:  d.submitting,
	}
	if d.resume != nil {
		v.ResumeName = d.resume.Name
	}
	return v
}

// Step is the current step.
func (d *Draft) Step() Step {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

// SetField updates one form value and clears its error. Unknown names are
// ignored.
func (d *Draft) SetField(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch name {
	case validation.FieldFirstName:
		d.fields.FirstName = value
	case validation.FieldLastName:
		d.fields.LastName = value
	case validation.FieldEmail:
		d.fields.Email = value
	case validation.FieldAge:
		d.fields.Age = value
	case validation.FieldDegree:
		d.fields.Degree = value
	case validation.FieldProject:
		d.fields.ProjectAppliedFor = value
	case validation.FieldRelevantExperience:
		d.fields.RelevantExperience = value
	default:
		return
	}
	delete(d.errors, name)
}

// SetFields applies each value in values. It is the form post
// counterpart of SetField: only fields present on the posted step change.
func (d *Draft) SetFields(values map[string]string) {
	for name, value := range values {
		d.SetField(name, value)
	}
}

// SelectResume replaces the chosen file. A PDF gets a preview URL; other
// types get the "doc" placeholder. The previous preview is always released
// first. A nil file clears the selection.
func (d *Draft) SelectResume(file *ResumeFile) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.errors, validation.FieldResume)
	d.resume = file
	d.preview.Release()
	d.previewKind = PreviewNone

	if file == nil {
		return PreviewNone, nil
	}
	if strings.EqualFold(file.ContentType, validation.MIMEPDF) {
		if _, err := d.preview.Replace(file.Data, file.ContentType); err != nil {
			d.previewKind = PreviewDoc
			return d.previewKind, err
		}
		d.previewKind = PreviewPDF
		return d.previewKind, nil
	}
	d.previewKind = PreviewDoc
	return d.previewKind, nil
}

// RejectResume drops the chosen file and shows msg on the resume field.
func (d *Draft) RejectResume(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resume = nil
	d.preview.Release()
	d.previewKind = PreviewNone
	d.errors[validation.FieldResume] = msg
}

// Back moves to an earlier step. Later or equal steps are ignored.
func (d *Draft) Back(to Step) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if to >= 0 && to < d.step {
		d.step = to
	}
}

// Next validates the current step and advances when it passes.
func (d *Draft) Next() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.validateStepLocked(d.step) {
		return false
	}
	if d.step < StepSummary {
		d.step++
	}
	return true
}

// ValidateStep checks the fields owned by step and merges the result into
// the error map. Keys of other steps are left alone.
func (d *Draft) ValidateStep(step Step) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validateStepLocked(step)
}

func (d *Draft) validateStepLocked(step Step) bool {
	found := d.stepErrors(step, d.flags.Enabled(featureflags.UniformResumeValidation, d.subject))
	for _, key := range stepFields[step] {
		if msg, ok := found[key]; ok {
			d.errors[key] = msg
		} else {
			delete(d.errors, key)
		}
	}
	return len(found) == 0
}

// stepErrors computes the errors of one step. fullResume adds the type and
// size checks to the resume step.
func (d *Draft) stepErrors(step Step, fullResume bool) validation.Errors {
	errs := validation.Errors{}
	set := func(field, msg string) {
		if msg != "" {
			errs[field] = msg
		}
	}
	f := d.fields
	switch step {
	case StepPersonal:
		set(validation.FieldFirstName, validation.Required(f.FirstName, validation.MsgFirstNameRequired))
		set(validation.FieldLastName, validation.Required(f.LastName, validation.MsgLastNameRequired))
		set(validation.FieldEmail, validation.Email(f.Email))
		set(validation.FieldAge, validation.AgeText(f.Age))
		set(validation.FieldDegree, validation.Required(f.Degree, validation.MsgDegreeRequired))
		set(validation.FieldProject, validation.Required(f.ProjectAppliedFor, validation.MsgProjectRequired))
	case StepExperience:
		set(validation.FieldRelevantExperience,
			validation.Required(f.RelevantExperience, validation.MsgExperienceRequired))
	case StepResume:
		switch {
		case d.resume == nil:
			set(validation.FieldResume, validation.MsgResumeRequired)
		case fullResume:
			set(validation.FieldResume, validation.Resume(true, d.resume.ContentType, d.resume.Size()))
		}
	}
	return errs
}

// validateAllLocked runs every rule, including the full resume checks.
func (d *Draft) validateAllLocked() validation.Errors {
	all := validation.Errors{}
	for _, step := range []Step{StepPersonal, StepExperience, StepResume} {
		all.Merge(d.stepErrors(step, true))
	}
	return all
}

// resetLocked empties the form and releases the preview.
func (d *Draft) resetLocked() {
	d.preview.Release()
	d.previewKind = PreviewNone
	d.fields = Fields{}
	d.resume = nil
	d.errors = validation.Errors{}
	d.banner = ""
	d.step = StepPersonal
}

// Close releases the preview. The draft must not be used afterwards.
func (d *Draft) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preview.Release()
}
