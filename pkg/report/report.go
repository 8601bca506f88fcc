// Package report accumulates findings from one diagnostic run and turns them
// into a status, an exit code and rendered output.
package report

import (
	"time"

	"github.com/google/uuid"

	"frameworks/dbdoctor/pkg/health"
)

// Exit codes returned to automation callers.
const (
	ExitHealthy   = 0
	ExitUnhealthy = 1
	ExitDegraded  = 2
)

// Target describes the connection parameters observed for the run.
type Target struct {
	Redacted string   `json:"url"`
	Host     string   `json:"host,omitempty"`
	Port     int      `json:"port,omitempty"`
	Database string   `json:"database,omitempty"`
	User     string   `json:"user,omitempty"`
	SSLMode  string   `json:"sslmode,omitempty"`
	Pooling  []string `json:"pooling,omitempty"`
}

// Report is the result of one pipeline run. Findings keep execution order.
type Report struct {
	RunID           string                  `json:"run_id"`
	Target          Target                  `json:"target"`
	StartedAt       time.Time               `json:"started_at"`
	FinishedAt      time.Time               `json:"finished_at"`
	Status          health.Status           `json:"status"`
	Findings        []health.Finding        `json:"findings"`
	Recommendations []health.Recommendation `json:"recommendations"`

	seen      map[string]struct{}
	finalized bool
}

// New starts an empty report.
func New(target Target, startedAt time.Time) *Report {
	return &Report{
		RunID:           uuid.NewString(),
		Target:          target,
		StartedAt:       startedAt,
		Findings:        []health.Finding{},
		Recommendations: []health.Recommendation{},
		seen:            make(map[string]struct{}),
	}
}

// Add appends f and records its remediation once per category+text.
// Findings added after Finalize are ignored.
func (r *Report) Add(f health.Finding) {
	if r.finalized {
		return
	}
	r.Findings = append(r.Findings, f)
	if f.Severity == health.SeverityOK || f.Remediation == nil {
		return
	}
	key := f.Remediation.Key()
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	r.Recommendations = append(r.Recommendations, *f.Remediation)
}

// Finalize computes the status. Only the first call has an effect.
func (r *Report) Finalize(finishedAt time.Time) {
	if r.finalized {
		return
	}
	r.finalized = true
	r.FinishedAt = finishedAt
	r.Status = health.Rollup(r.Findings)
}

// Finalized reports whether Finalize has run.
func (r *Report) Finalized() bool {
	return r.finalized
}

// Finding returns the finding recorded for probe, if any.
func (r *Report) Finding(probe string) (health.Finding, bool) {
	for _, f := range r.Findings {
		if f.Probe == probe {
			return f, true
		}
	}
	return health.Finding{}, false
}

// Count returns how many findings have severity s.
func (r *Report) Count(s health.Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Duration is the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ExitCode maps the status to a process exit code. When failOnDegraded is
// false a degraded run exits 0.
func (r *Report) ExitCode(failOnDegraded bool) int {
	return exitCode(r.Status, failOnDegraded)
}

func exitCode(s health.Status, failOnDegraded bool) int {
	switch s {
	case health.StatusHealthy:
		return ExitHealthy
	case health.StatusDegraded:
		if failOnDegraded {
			return ExitDegraded
		}
		return ExitHealthy
	default:
		return ExitUnhealthy
	}
}

// Batch is the merged result of several independent runs.
type Batch struct {
	Status  health.Status `json:"status"`
	Reports []*Report     `json:"reports"`
}

// NewBatch merges reports; the batch status is the worst member status.
func NewBatch(reports []*Report) *Batch {
	b := &Batch{Status: health.StatusHealthy, Reports: reports}
	for _, r := range reports {
		b.Status = health.Worst(b.Status, r.Status)
	}
	return b
}

// ExitCode is the exit code of the worst member.
func (b *Batch) ExitCode(failOnDegraded bool) int {
	return exitCode(b.Status, failOnDegraded)
}
