// Package validation holds input rules shared by the API and the web front.
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"lifewood/internal/models"
)

// Field keys used in error maps. They match the form and JSON field names.
const (
	FieldFirstName          = "firstName"
	FieldLastName           = "lastName"
	FieldEmail              = "email"
	FieldAge                = "age"
	FieldDegree             = "degree"
	FieldProject            = "projectAppliedFor"
	FieldRelevantExperience = "relevantExperience"
	FieldResume             = "resume"
	FieldPassword           = "password"
)

// User-facing messages.
const (
	MsgFirstNameRequired   = "First name is required"
	MsgLastNameRequired    = "Last name is required"
	MsgEmailRequired       = "Email is required"
	MsgEmailInvalid        = "Email is invalid"
	MsgAgeRequired         = "Age is required"
	MsgAgeNotNumber        = "Age must be a whole number"
	MsgAgeTooYoung         = "Age must be at least 18"
	MsgDegreeRequired      = "Degree is required"
	MsgProjectRequired     = "Please select a project"
	MsgProjectInvalid      = "Invalid project selection"
	MsgExperienceRequired  = "Relevant experience is required"
	MsgResumeRequired      = "Resume is required"
	MsgResumeType          = "Only PDF and Word documents are allowed"
	MsgResumeTooLarge      = "File size must be less than 5MB"
	MsgPasswordRequired    = "Password is required"
	MsgStatusRequired      = "Status is required"
	MsgEmailAlreadyExists  = "Email already exists"
	MsgApplicantNotFound   = "Applicant not found"
	MsgResumeNotUploaded   = "Resume not uploaded for this applicant"
	MsgInvalidCredentials  = "Invalid email or password"
	MsgLoginSuccessful     = "Login successful"
	MsgApplicantDeleted    = "Applicant deleted successfully"
	MsgTokenValid          = "Token is valid"
	MsgInvalidToken        = "Invalid token"
	MsgMailRecipientNeeded = "Recipient email 'to' is required"
)

// MinimumAge is the youngest accepted applicant age.
const MinimumAge = 18

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Errors maps a field key to its message. A nil or empty map means valid.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Merge copies other into e, overwriting keys present in both.
func (e Errors) Merge(other Errors) {
	for k, v := range other {
		e[k] = v
	}
}

// Required returns msg when value is blank after trimming.
func Required(value, msg string) string {
	if strings.TrimSpace(value) == "" {
		return msg
	}
	return ""
}

// Email checks presence and the local@domain.tld shape.
func Email(email string) string {
	if strings.TrimSpace(email) == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	return ""
}

// AgeText validates an age typed into a form field. Only an empty field is
// missing; a typed 0 is too young.
func AgeText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MsgAgeRequired
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return MsgAgeNotNumber
	}
	if age < MinimumAge {
		return MsgAgeTooYoung
	}
	return ""
}

// Age validates an already parsed age. Zero is treated as missing.
func Age(age int) string {
	if age == 0 {
		return MsgAgeRequired
	}
	if age < MinimumAge {
		return MsgAgeTooYoung
	}
	return ""
}

// ProjectLookup reports whether a project title exists.
type ProjectLookup interface {
	Contains(title string) bool
}

// ApplicantInput runs the server-side field rules over in. Resume rules are
// checked separately because the file travels outside the input struct.
func ApplicantInput(in models.ApplicantInput, projects ProjectLookup) Errors {
	errs := Errors{}
	set := func(field, msg string) {
		if msg != "" {
			errs[field] = msg
		}
	}
	set(FieldFirstName, Required(in.FirstName, MsgFirstNameRequired))
	set(FieldLastName, Required(in.LastName, MsgLastNameRequired))
	set(FieldAge, Age(in.Age))
	set(FieldDegree, Required(in.Degree, MsgDegreeRequired))
	set(FieldEmail, Email(in.Email))
	set(FieldRelevantExperience, Required(in.RelevantExperience, MsgExperienceRequired))
	switch {
	case strings.TrimSpace(in.ProjectAppliedFor) == "":
		set(FieldProject, MsgProjectRequired)
	case projects != nil && !projects.Contains(in.ProjectAppliedFor):
		set(FieldProject, MsgProjectInvalid)
	}
	return errs
}

// FieldOrder is the order fields are reported in when only one message fits.
var FieldOrder = []string{
	FieldFirstName,
	FieldLastName,
	FieldAge,
	FieldResume,
	FieldDegree,
	FieldEmail,
	FieldProject,
	FieldRelevantExperience,
	FieldPassword,
}

// First returns the first message in FieldOrder, or any message if none of
// the known keys is set.
func (e Errors) First() string {
	for _, f := range FieldOrder {
		if msg, ok := e[f]; ok {
			return msg
		}
	}
	for _, msg := range e {
		return msg
	}
	return ""
}
