// Package featureflags evaluates the FEATURE_FLAGS configuration string.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// UniformResumeValidation checks resume type and size on the resume step
	// of the registration form instead of only at final submit.
	UniformResumeValidation = "uniform_resume_validation"
	// DuplicateEmailSoftSuccess treats a 400 or 409 answer to a registration
	// as "already applied" rather than as a failure.
	DuplicateEmailSoftSuccess = "duplicate_email_soft_success"
)

var defaults = map[string]string{
	UniformResumeValidation:   "on",
	DuplicateEmailSoftSuccess: "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "uniform_resume_validation=off,duplicate_email_soft_success=50%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config
// string. Known flags not mentioned keep their defaults.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a subject (a session id or
// an email). Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by subject, e.g. 25%)
//
// A nil Manager falls back to the defaults.
func (m *Manager) Enabled(name, subject string) bool {
	var value string
	if m == nil {
		value = defaults[normalize(name)]
	} else {
		value = m.flags[normalize(name)]
	}

	switch value {
	case "on", "true", "1":
		return true
	case "", "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if subject == "" {
		return false
	}
	return rolloutBucket(name, subject) < pct
}

// Raw returns a copy of configured flags, defaults included.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one subject.
func (m *Manager) Snapshot(subject string) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, subject)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
