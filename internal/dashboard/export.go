package dashboard

import (
	"io"
	"strings"
	"time"

	"lifewood/internal/models"
)

// CSVColumns are the header cells of an export.
var CSVColumns = []string{"First Name", "Last Name", "Email", "Degree", "Project", "Status", "Applied On"}

// ExportFileName is the suggested download name.
const ExportFileName = "applicants.csv"

// ExportCSV writes every loaded applicant, ignoring any filter.
func (d *Dashboard) ExportCSV(w io.Writer) error {
	return WriteCSV(w, d.Applicants())
}

// WriteCSV writes applicants as CSV. Every cell, header included, is quoted.
// Rows are joined by "\n" and there is no trailing newline.
func WriteCSV(w io.Writer, applicants []models.Applicant) error {
	if len(applicants) == 0 {
		return ErrNothingToExport
	}
	var b strings.Builder
	writeRow(&b, CSVColumns...)
	for _, a := range applicants {
		b.WriteByte('\n')
		writeRow(&b,
			a.FirstName,
			a.LastName,
			a.Email,
			a.Degree,
			a.ProjectAppliedFor,
			string(a.Status.Normalize()),
			appliedOn(a.CreatedAt),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

func appliedOn(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
