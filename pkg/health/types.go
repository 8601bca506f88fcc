// Package health holds the finding model shared by probes, the runner and the
// report renderers.
package health

import (
	"fmt"
	"strings"
	"time"
)

// Severity of a single finding. Ordered: Ok < Warning < Error.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "ok":
		*s = SeverityOK
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", string(b))
	}
	return nil
}

// Category is the remediation bucket a non-ok finding falls into.
type Category string

const (
	CategoryConfiguration   Category = "configuration"
	CategoryCredentials     Category = "credentials"
	CategoryNetwork         Category = "network"
	CategoryMissingResource Category = "missing_resource"
	CategoryPooling         Category = "pooling"
	CategoryCapacity        Category = "capacity"
	CategoryStability       Category = "stability"
	CategoryUnknown         Category = "unknown"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryConfiguration,
	CategoryCredentials,
	CategoryNetwork,
	CategoryMissingResource,
	CategoryPooling,
	CategoryCapacity,
	CategoryStability,
	CategoryUnknown,
}

// Recommendation is one piece of actionable advice. Two recommendations are
// the same advice when both category and text match.
type Recommendation struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Key identifies the recommendation for de-duplication.
func (r Recommendation) Key() string {
	return string(r.Category) + "\x00" + r.Text
}

// Finding is one observation emitted by one probe run.
type Finding struct {
	Probe          string            `json:"probe"`
	Severity       Severity          `json:"severity"`
	Message        string            `json:"message"`
	DurationMillis *int64            `json:"duration_ms,omitempty"`
	Remediation    *Recommendation   `json:"remediation,omitempty"`
	Advisory       bool              `json:"advisory,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// OK builds a passing finding.
func OK(probe, message string) Finding {
	return Finding{Probe: probe, Severity: SeverityOK, Message: message}
}

// Warn builds a warning finding carrying rec.
func Warn(probe, message string, rec Recommendation) Finding {
	return Finding{Probe: probe, Severity: SeverityWarning, Message: message, Remediation: &rec}
}

// Fail builds an error finding carrying rec.
func Fail(probe, message string, rec Recommendation) Finding {
	return Finding{Probe: probe, Severity: SeverityError, Message: message, Remediation: &rec}
}

// WithDuration returns a copy of f carrying d rounded to milliseconds.
func (f Finding) WithDuration(d time.Duration) Finding {
	ms := d.Milliseconds()
	f.DurationMillis = &ms
	return f
}

// WithMetadata returns a copy of f with key=value added.
func (f Finding) WithMetadata(key, value string) Finding {
	md := make(map[string]string, len(f.Metadata)+1)
	for k, v := range f.Metadata {
		md[k] = v
	}
	md[key] = value
	f.Metadata = md
	return f
}

// AsAdvisory marks a warning as advice that does not degrade overall status.
func (f Finding) AsAdvisory() Finding {
	f.Advisory = true
	return f
}

// Duration returns the measured duration, if any.
func (f Finding) Duration() (time.Duration, bool) {
	if f.DurationMillis == nil {
		return 0, false
	}
	return time.Duration(*f.DurationMillis) * time.Millisecond, true
}

// Status is the overall verdict of a run.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Level orders statuses from best (0) to worst (2).
func (s Status) Level() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Worst returns the worse of a and b.
func Worst(a, b Status) Status {
	if b.Level() > a.Level() {
		return b
	}
	return a
}

// Rollup derives the overall status: any error makes the run unhealthy, any
// non-advisory warning makes it degraded.
func Rollup(findings []Finding) Status {
	anyError := false
	anyWarning := false
	for _, f := range findings {
		switch f.Severity {
		case SeverityOK:
		case SeverityWarning:
			if !f.Advisory {
				anyWarning = true
			}
		default:
			anyError = true
		}
	}

	switch {
	case anyError:
		return StatusUnhealthy
	case anyWarning:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}
