package validation

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Resume content types accepted for upload.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOC  = "application/msword"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MaxResumeBytes is the largest accepted resume.
const MaxResumeBytes int64 = 5 * 1024 * 1024

var allowedResumeTypes = map[string]struct{}{
	MIMEPDF:  {},
	MIMEDOC:  {},
	MIMEDOCX: {},
}

// IsAllowedResumeType reports whether contentType is PDF or Word. Parameters
// such as charset are ignored.
func IsAllowedResumeType(contentType string) bool {
	_, ok := allowedResumeTypes[baseType(contentType)]
	return ok
}

// Resume checks presence, declared type and size of a resume file.
func Resume(present bool, contentType string, size int64) string {
	if !present {
		return MsgResumeRequired
	}
	if !IsAllowedResumeType(contentType) {
		return MsgResumeType
	}
	if size > MaxResumeBytes {
		return MsgResumeTooLarge
	}
	return ""
}

// SniffResume inspects the file header and returns the content type to
// store. Word files are containers (OLE or zip), so a declared Word type is
// trusted when the sniffed container matches; anything else must sniff as an
// allowed type itself.
func SniffResume(declared string, head []byte) (string, bool) {
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if IsAllowedResumeType(m.String()) {
			return m.String(), true
		}
	}

	declared = baseType(declared)
	switch declared {
	case MIMEDOCX:
		if detected.Is("application/zip") {
			return MIMEDOCX, true
		}
	case MIMEDOC:
		if detected.Is("application/x-ole-storage") {
			return MIMEDOC, true
		}
	}
	return detected.String(), false
}

func baseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
