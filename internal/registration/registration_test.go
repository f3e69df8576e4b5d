package registration

import (
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"lifewood/internal/apiclient"
	"lifewood/internal/blob"
	"lifewood/internal/featureflags"
	"lifewood/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAPI answers POST /api/applicants with a fixed status and counts
// the calls it receives.
type countingAPI struct {
	calls  atomic.Int32
	status int
	body   string
	fields []string
}

func (a *countingAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.calls.Add(1)
	if _, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			a.fields = append(a.fields, p.FormName())
		}
	}
	w.WriteHeader(a.status)
	_, _ = w.Write([]byte(a.body))
}

type fixture struct {
	api   *countingAPI
	blobs *blob.Registry
	draft *Draft
}

func newFixture(t *testing.T, status int, body, flags string) *fixture {
	t.Helper()
	api := &countingAPI{status: status, body: body}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	blobs := blob.NewRegistry(0)
	client := apiclient.New(srv.URL+"/api", nil)
	return &fixture{
		api:   api,
		blobs: blobs,
		draft: NewDraft(client, featureflags.NewManager(flags), blobs, "session-1", ""),
	}
}

func pdfFile() *ResumeFile {
	return &ResumeFile{Name: "cv.pdf", ContentType: validation.MIMEPDF, Data: []byte("%PDF-1.4 test")}
}

func fillValid(d *Draft) {
	d.SetFields(map[string]string{
		validation.FieldFirstName:          "Jane",
		validation.FieldLastName:           "Doe",
		validation.FieldEmail:              "jane@example.com",
		validation.FieldAge:                "25",
		validation.FieldDegree:             "BS Computer Science",
		validation.FieldProject:            "Computer Vision",
		validation.FieldRelevantExperience: "Two years of image labeling",
	})
	_, _ = d.SelectResume(pdfFile())
}

func TestNewDraft_ProjectHint(t *testing.T) {
	d := NewDraft(nil, nil, blob.NewRegistry(0), "", " Genealogy ")
	assert.Equal(t, "Genealogy", d.View().Fields.ProjectAppliedFor)
}

func TestNext_InvalidStepStaysAndReportsErrors(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft

	assert.False(t, d.Next())
	assert.Equal(t, StepPersonal, d.Step())
	errs := d.View().Errors
	assert.Equal(t, validation.MsgFirstNameRequired, errs[validation.FieldFirstName])
	assert.Equal(t, validation.MsgLastNameRequired, errs[validation.FieldLastName])
	assert.Equal(t, validation.MsgEmailRequired, errs[validation.FieldEmail])
	assert.Equal(t, validation.MsgAgeRequired, errs[validation.FieldAge])
	assert.Equal(t, validation.MsgDegreeRequired, errs[validation.FieldDegree])
	assert.Equal(t, validation.MsgProjectRequired, errs[validation.FieldProject])
	assert.False(t, errs.Has(validation.FieldRelevantExperience))
}

func TestAgeRule(t *testing.T) {
	tests := []struct {
		age  string
		want string
	}{
		{"17", validation.MsgAgeTooYoung},
		{"0", validation.MsgAgeTooYoung},
		{"", validation.MsgAgeRequired},
		{"18", ""},
		{"64", ""},
	}
	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			d := NewDraft(nil, nil, blob.NewRegistry(0), "", "")
			d.SetField(validation.FieldAge, tt.age)
			d.ValidateStep(StepPersonal)
			assert.Equal(t, tt.want, d.View().Errors[validation.FieldAge])
		})
	}
}

func TestValidateStep_MergesWithoutTouchingOtherKeys(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft

	assert.False(t, d.ValidateStep(StepExperience))
	assert.False(t, d.ValidateStep(StepPersonal))
	require.True(t, d.View().Errors.Has(validation.FieldRelevantExperience))

	d.SetFields(map[string]string{
		validation.FieldFirstName: "Jane",
		validation.FieldLastName:  "Doe",
		validation.FieldEmail:     "not-an-email",
		validation.FieldAge:       "30",
		validation.FieldDegree:    "BA",
		validation.FieldProject:   "Genealogy",
	})
	assert.False(t, d.ValidateStep(StepPersonal))

	errs := d.View().Errors
	assert.Equal(t, validation.MsgEmailInvalid, errs[validation.FieldEmail])
	assert.False(t, errs.Has(validation.FieldFirstName), "passing keys of the step are cleared")
	assert.Equal(t, validation.MsgExperienceRequired, errs[validation.FieldRelevantExperience],
		"keys of other steps stay")
}

func TestSetField_ClearsThatError(t *testing.T) {
	d := NewDraft(nil, nil, blob.NewRegistry(0), "", "")
	d.ValidateStep(StepPersonal)
	d.SetField(validation.FieldFirstName, "J")
	errs := d.View().Errors
	assert.False(t, errs.Has(validation.FieldFirstName))
	assert.True(t, errs.Has(validation.FieldLastName))
}

func TestStepper_ForwardAndBack(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft
	fillValid(d)

	require.True(t, d.Next())
	require.True(t, d.Next())
	require.True(t, d.Next())
	assert.Equal(t, StepSummary, d.Step())
	assert.True(t, d.Next(), "summary has no rules")
	assert.Equal(t, StepSummary, d.Step())

	d.Back(StepSummary)
	assert.Equal(t, StepSummary, d.Step())
	d.Back(StepExperience)
	assert.Equal(t, StepExperience, d.Step())
	d.Back(StepPersonal)
	assert.Equal(t, StepPersonal, d.Step())
}

func TestResumeStep_FlagControlsDepth(t *testing.T) {
	png := &ResumeFile{Name: "cv.png", ContentType: "image/png", Data: []byte("x")}
	big := &ResumeFile{Name: "cv.pdf", ContentType: validation.MIMEPDF, Data: make([]byte, validation.MaxResumeBytes+1)}

	tests := []struct {
		name  string
		flags string
		file  *ResumeFile
		want  string
	}{
		{"missing", "", nil, validation.MsgResumeRequired},
		{"type checked by default", "", png, validation.MsgResumeType},
		{"size checked by default", "", big, validation.MsgResumeTooLarge},
		{"presence only when off", "uniform_resume_validation=off", png, ""},
		{"valid", "", pdfFile(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft(nil, featureflags.NewManager(tt.flags), blob.NewRegistry(0), "", "")
			_, _ = d.SelectResume(tt.file)
			ok := d.ValidateStep(StepResume)
			assert.Equal(t, tt.want == "", ok)
			assert.Equal(t, tt.want, d.View().Errors[validation.FieldResume])
		})
	}
}

func TestSubmit_TypeCheckedEvenWhenStepWasLenient(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "uniform_resume_validation=off")
	d := f.draft
	fillValid(d)
	_, _ = d.SelectResume(&ResumeFile{Name: "cv.png", ContentType: "image/png", Data: []byte("x")})
	require.True(t, d.ValidateStep(StepResume))

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Equal(t, validation.MsgResumeType, d.View().Errors[validation.FieldResume])
	assert.Zero(t, f.api.calls.Load())
}

func TestSelectResume_Preview(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft

	kind, err := d.SelectResume(pdfFile())
	require.NoError(t, err)
	assert.Equal(t, PreviewPDF, kind)
	first := d.View().PreviewURL
	require.NotEmpty(t, first)

	kind, err = d.SelectResume(pdfFile())
	require.NoError(t, err)
	assert.Equal(t, PreviewPDF, kind)
	second := d.View().PreviewURL
	assert.NotEqual(t, first, second)
	_, ok := f.blobs.Get(first)
	assert.False(t, ok, "previous preview revoked")
	assert.Equal(t, 1, f.blobs.Live())

	kind, err = d.SelectResume(&ResumeFile{Name: "cv.docx", ContentType: validation.MIMEDOCX, Data: []byte("PK")})
	require.NoError(t, err)
	assert.Equal(t, PreviewDoc, kind)
	assert.Empty(t, d.View().PreviewURL)
	assert.Zero(t, f.blobs.Live())
}

func TestRejectResume_ClearsFileAndSetsError(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft
	fillValid(d)
	require.Equal(t, 1, f.blobs.Live())

	d.RejectResume(validation.MsgResumeTooLarge)

	v := d.View()
	assert.Equal(t, validation.MsgResumeTooLarge, v.Errors[validation.FieldResume])
	assert.Empty(t, v.ResumeName)
	assert.Empty(t, v.PreviewURL)
	assert.Zero(t, f.blobs.Live())
	assert.Equal(t, "Jane", v.Fields.FirstName)

	_, err := d.SelectResume(pdfFile())
	require.NoError(t, err)
	assert.False(t, d.View().Errors.Has(validation.FieldResume))
}

func TestSubmit_UnderageMakesNoNetworkCall(t *testing.T) {
	f := newFixture(t, http.StatusCreated, "{}", "")
	d := f.draft
	fillValid(d)
	d.SetField(validation.FieldAge, "17")

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Outcome)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, validation.MsgAgeTooYoung, d.View().Errors[validation.FieldAge])
	assert.Zero(t, f.api.calls.Load())
}

func TestSubmit_CreatedResetsForm(t *testing.T) {
	f := newFixture(t, http.StatusCreated, `{"id":1}`, "")
	d := f.draft
	fillValid(d)
	d.Next()
	d.Next()

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, res.Outcome)
	assert.Equal(t, "/", res.Redirect)
	assert.Equal(t, NoticeSubmitted, res.Notice)
	assert.Equal(t, int32(1), f.api.calls.Load())
	assert.Equal(t, []string{
		"firstName", "lastName", "age", "degree", "relevantExperience", "email", "projectAppliedFor", "resume",
	}, f.api.fields)

	v := d.View()
	assert.Equal(t, Fields{}, v.Fields)
	assert.Equal(t, StepPersonal, v.Step)
	assert.Empty(t, v.ResumeName)
	assert.Zero(t, f.blobs.Live(), "preview released")
}

func TestSubmit_OtherSuccessStatusKeepsForm(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, status, `{"id":1}`, "")
			d := f.draft
			fillValid(d)
			d.Next()

			res, err := d.Submit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.Empty(t, res.Redirect)
			assert.Equal(t, int32(1), f.api.calls.Load())

			v := d.View()
			assert.Equal(t, BannerSubmitFailed, v.Banner)
			assert.Equal(t, "Jane", v.Fields.FirstName)
			assert.Equal(t, StepExperience, v.Step)
			assert.Equal(t, "cv.pdf", v.ResumeName)
		})
	}
}

func TestSubmit_DuplicateIsSoftSuccess(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusBadRequest} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, status, `{"error":"Email already exists","code":"CONFLICT"}`, "")
			d := f.draft
			fillValid(d)

			res, err := d.Submit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, OutcomeAlreadyApplied, res.Outcome)
			assert.Equal(t, "/", res.Redirect)
			assert.Equal(t, NoticeAlreadyApplied, res.Notice)
			assert.Equal(t, Fields{}, d.View().Fields)
		})
	}
}

func TestSubmit_DuplicateFailsWhenFlagOff(t *testing.T) {
	f := newFixture(t, http.StatusConflict, `{"error":"Email already exists","code":"CONFLICT"}`,
		"duplicate_email_soft_success=off")
	d := f.draft
	fillValid(d)

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	v := d.View()
	assert.Equal(t, "Email already exists", v.Banner)
	assert.Equal(t, "Jane", v.Fields.FirstName)
}

func TestSubmit_ServerErrorKeepsForm(t *testing.T) {
	f := newFixture(t, http.StatusInternalServerError, "", "")
	d := f.draft
	fillValid(d)
	d.Next()

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	v := d.View()
	assert.Equal(t, BannerSubmitFailed, v.Banner)
	assert.Equal(t, StepExperience, v.Step)
	assert.Equal(t, "cv.pdf", v.ResumeName)
}

func TestSubmit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	d := NewDraft(apiclient.New(srv.URL, nil), nil, blob.NewRegistry(0), "", "")
	fillValid(d)

	res, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, BannerSubmitFailed, d.View().Banner)
}

func TestStepTitle(t *testing.T) {
	assert.Equal(t, "Resume", StepResume.Title())
	assert.Empty(t, Step(9).Title())
	assert.True(t, strings.HasPrefix(OutcomeAlreadyApplied.String(), "already"))
}
