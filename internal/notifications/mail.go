package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"
)

// Kind selects the applicant decision being announced.
type Kind string

// Supported mail kinds.
const (
	KindApproval Kind = "approval"
	KindDecline  Kind = "decline"
)

// ParseKind accepts approval/approved and decline/declined/rejected.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approval", "approve", "approved", "":
		return KindApproval, true
	case "decline", "declined", "rejected", "reject":
		return KindDecline, true
	default:
		return "", false
	}
}

// Subjects.
const (
	SubjectApproval = "Your Application Has Been Approved"
	SubjectDecline  = "Regarding Your Application"
)

// Message is a rendered mail body. HTML is empty in simple mode.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type bodyData struct {
	Name  string
	Title string
	Body  template.HTML
	Year  int
}

var layout = template.Must(template.New("layout").Parse(`<div style="font-family:Arial,Helvetica,sans-serif;background-color:#f7f9fb;padding:24px;">` +
	`<div style="max-width:640px;margin:0 auto;background:#ffffff;border-radius:10px;border:1px solid #e5eaf0;overflow:hidden;">` +
	`<div style="padding:24px 24px 8px 24px;border-bottom:1px solid #eef2f7;"><h2 style="margin:0;color:#046241;">{{.Title}}</h2></div>` +
	`<div style="padding:24px;color:#243b4a;line-height:1.6;font-size:14px;">{{.Body}}` +
	`<p style="margin-top:24px;color:#506575;font-size:12px">If you have any questions, simply reply to this email and we'll be happy to help.</p>` +
	`<p style="margin:0;color:#506575;font-size:12px">Warm regards,<br/><strong>Recruitment Team</strong></p>` +
	`</div></div>` +
	`<p style="text-align:center;color:#90a4ae;font-size:11px;margin-top:16px">&copy; {{.Year}} Lifewood Data Technology</p>` +
	`</div>`))

var approvalBody = template.Must(template.New("approval").Parse(`<p>Dear {{.Name}},</p>` +
	`<p>Congratulations! We're pleased to inform you that your application has been <strong>approved</strong>.</p>` +
	`<p>Our team will reach out with the next steps shortly. In the meantime, feel free to reply if you have any questions.</p>` +
	`<p style="margin:16px 0;padding:12px;background:#eaf6ee;border-left:4px solid #2e7d32;color:#1b5e20">` +
	`You've done great, keep the momentum going! We look forward to working with you.</p>`))

var declineBody = template.Must(template.New("decline").Parse(`<p>Dear {{.Name}},</p>` +
	`<p>Thank you sincerely for the time and effort you invested in your application. After careful consideration, we will not be moving forward at this time.</p>` +
	`<p>Please know this decision does not diminish your potential. We encourage you to stay connected and consider applying again in the future as opportunities evolve.</p>` +
	`<p style="margin:16px 0;padding:12px;background:#fff3f3;border-left:4px solid #c62828;color:#7f1d1d">` +
	`We appreciate your interest and wish you every success on your journey.</p>`))

// Render builds the message for kind addressed to name.
func Render(kind Kind, name string, simple bool, now time.Time) (Message, error) {
	name = strings.TrimSpace(name)
	if kind == KindDecline {
		return render(SubjectDecline, "Application Update", declineBody, declineText(name), name, simple, now)
	}
	return render(SubjectApproval, "Application Approved", approvalBody, approvalText(name), name, simple, now)
}

func render(subject, title string, body *template.Template, text, name string, simple bool, now time.Time) (Message, error) {
	if simple {
		return Message{Subject: subject, Text: text}, nil
	}

	var inner bytes.Buffer
	if err := body.Execute(&inner, bodyData{Name: name}); err != nil {
		return Message{}, fmt.Errorf("render body: %w", err)
	}
	var page bytes.Buffer
	data := bodyData{Title: title, Body: template.HTML(inner.String()), Year: now.Year()} //nolint:gosec // inner was rendered by html/template
	if err := layout.Execute(&page, data); err != nil {
		return Message{}, fmt.Errorf("render layout: %w", err)
	}
	html := page.String()
	return Message{Subject: subject, HTML: html, Text: HTMLToText(html)}, nil
}

func approvalText(name string) string {
	return "Dear " + name + ",\n\n" +
		"Congratulations! Your application has been approved.\n" +
		"We will contact you shortly with the next steps.\n\n" +
		"Warm regards,\n" +
		"Recruitment Team"
}

func declineText(name string) string {
	return "Dear " + name + ",\n\n" +
		"Thank you for the time and effort you invested in your application.\n" +
		"After careful consideration, we will not be moving forward at this time.\n\n" +
		"We encourage you to stay connected and consider applying again in the future.\n\n" +
		"Warm regards,\n" +
		"Recruitment Team"
}

var (
	brTag      = regexp.MustCompile(`(?i)<br\s*/?>`)
	paraClose  = regexp.MustCompile(`(?i)</p>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&copy;", "(c)",
)

// HTMLToText produces the plain-text alternative of an HTML body.
func HTMLToText(html string) string {
	s := brTag.ReplaceAllString(html, "\n")
	s = paraClose.ReplaceAllString(s, "\n\n")
	s = anyTag.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
