// Package runner drives one diagnostic pipeline: parse the descriptor, open
// the session, run the probes in order and finalize the report.
package runner

import (
	"context"
	"database/sql"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/database"
	"frameworks/dbdoctor/pkg/dsn"
	"frameworks/dbdoctor/pkg/health"
	"frameworks/dbdoctor/pkg/logging"
	"frameworks/dbdoctor/pkg/probe"
	"frameworks/dbdoctor/pkg/report"
)

// DescriptorProbe is the probe name used for descriptor failures.
const DescriptorProbe = "descriptor"

// State is a step of the pipeline.
type State int

const (
	StateInit State = iota
	StateParsingDescriptor
	StateConnecting
	StateRunningProbes
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateParsingDescriptor:
		return "parsing_descriptor"
	case StateConnecting:
		return "connecting"
	case StateRunningProbes:
		return "running_probes"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Runner runs the probe pipeline against one descriptor at a time. A Runner
// holds no per-run state and may be shared by concurrent runs.
type Runner struct {
	probes  []probe.Probe
	open    database.Opener
	logger  logging.Logger
	now     func() time.Time
	onState func(State)
}

// Option configures a Runner.
type Option func(*Runner)

// WithStateHook registers fn to be called on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(r *Runner) { r.onState = fn }
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a runner for probes, executed in the given order.
func New(probes []probe.Probe, open database.Opener, logger logging.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	r := &Runner{
		probes: probes,
		open:   open,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline for raw and always returns a finalized report.
func (r *Runner) Run(ctx context.Context, raw string) *report.Report {
	r.transition(StateInit)
	started := r.now()

	r.transition(StateParsingDescriptor)
	d, err := parseDescriptor(raw)
	if err != nil {
		rep := report.New(report.Target{Redacted: dsn.RedactRaw(raw)}, started)
		r.logger.WithError(err).Warn("Connection descriptor rejected")
		rep.Add(health.Fail(DescriptorProbe, err.Error(), classify.Recommend(health.CategoryConfiguration)))
		r.finish(rep, nil)
		return rep
	}

	rep := report.New(targetOf(d), started)
	log := r.logger.WithFields(logging.Fields{"run_id": rep.RunID, "target": rep.Target.Redacted})
	if d.PortDefaulted {
		rep.Add(health.Warn(DescriptorProbe,
			fmt.Sprintf("no port given; assuming %d", dsn.DefaultPort),
			health.Recommendation{
				Category: health.CategoryConfiguration,
				Text:     "State the port explicitly in the connection string so poolers and replicas on other ports are not missed",
			}).AsAdvisory())
	}

	r.transition(StateConnecting)
	env := probe.Env{Descriptor: d}
	release := func() {}
	if r.needsConnection() {
		db, err := r.open(ctx, d)
		if err != nil {
			log.WithError(err).Debug("Opening connection failed")
			env.OpenErr = err
		}
		if db != nil {
			env.DB = db
			release = sync.OnceFunc(func() { r.close(db) })
			defer release()
		}
	}

	r.transition(StateRunningProbes)
	r.runProbes(ctx, rep, env)

	r.finish(rep, release)
	log.WithFields(logging.Fields{
		"status":   rep.Status,
		"findings": len(rep.Findings),
		"duration": rep.Duration().Round(time.Millisecond),
	}).Info("Diagnostic run complete")
	return rep
}

func (r *Runner) runProbes(ctx context.Context, rep *report.Report, env probe.Env) {
	gated := ""
	for _, p := range r.probes {
		if gated != "" && p.NeedsConnection() {
			r.logger.WithFields(logging.Fields{"probe": p.Name(), "gated_by": gated}).Debug("Skipping probe")
			continue
		}

		env.Prior = rep.Findings
		f := r.runProbe(ctx, p, env)
		rep.Add(f)

		entry := r.logger.WithFields(logging.Fields{"probe": f.Probe, "severity": f.Severity})
		if d, ok := f.Duration(); ok {
			entry = entry.WithField("duration", d)
		}
		entry.Debug(f.Message)

		if p.Gates() && f.Severity == health.SeverityError {
			gated = p.Name()
		}
	}
}

// runProbe converts a panicking probe into an error finding.
func (r *Runner) runProbe(ctx context.Context, p probe.Probe, env probe.Env) (f health.Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(logging.Fields{
				"probe": p.Name(),
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("Probe panicked")
			f = health.Fail(p.Name(), fmt.Sprintf("probe failed unexpectedly: %v", rec), classify.Recommend(health.CategoryUnknown))
		}
	}()

	f = p.Run(ctx, env)
	if f.Probe == "" {
		f.Probe = p.Name()
	}
	return f
}

func (r *Runner) finish(rep *report.Report, release func()) {
	r.transition(StateFinalizing)
	if release != nil {
		release()
	}
	rep.Finalize(r.now())
	r.transition(StateDone)
}

func (r *Runner) close(db *sql.DB) {
	if err := db.Close(); err != nil {
		r.logger.WithError(err).Warn("Failed to close connection")
	}
}

func (r *Runner) needsConnection() bool {
	for _, p := range r.probes {
		if p.NeedsConnection() {
			return true
		}
	}
	return false
}

func (r *Runner) transition(s State) {
	r.logger.WithField("state", s).Debug("Runner state")
	if r.onState != nil {
		r.onState(s)
	}
}

// parseDescriptor treats an incomplete descriptor the same as a malformed one.
func parseDescriptor(raw string) (dsn.ConnectionDescriptor, error) {
	d, err := dsn.Parse(raw)
	if err != nil {
		return d, err
	}
	if !d.Complete() {
		return d, &dsn.ParseError{Reason: "missing " + strings.Join(d.Missing, ", ")}
	}
	return d, nil
}

func targetOf(d dsn.ConnectionDescriptor) report.Target {
	return report.Target{
		Redacted: d.Redacted(),
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		SSLMode:  d.SSLMode,
		Pooling:  d.PoolingParams,
	}
}
