// Package probe implements the individual diagnostic steps run against a
// Postgres-compatible store.
package probe

import (
	"context"
	"database/sql"
	"time"

	"frameworks/dbdoctor/pkg/dsn"
	"frameworks/dbdoctor/pkg/health"
)

// Probe names as they appear in reports.
const (
	EnvironmentName  = "environment"
	TLSName          = "tls"
	ReachabilityName = "reachability"
	ConnectivityName = "connectivity"
	StabilityName    = "stability"
	MetadataName     = "metadata"
	PressureName     = "resource_pressure"
)

// Handle is the subset of *sql.DB the probes use.
type Handle interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Env is what the runner hands each probe.
type Env struct {
	Descriptor dsn.ConnectionDescriptor
	// DB is nil for probes that do not need a connection.
	DB Handle
	// OpenErr is set when acquiring the handle failed.
	OpenErr error
	// Prior holds the findings recorded so far, in execution order.
	Prior []health.Finding
}

// PriorFinding returns the most recent finding recorded by probe name.
func (e Env) PriorFinding(name string) (health.Finding, bool) {
	for i := len(e.Prior) - 1; i >= 0; i-- {
		if e.Prior[i].Probe == name {
			return e.Prior[i], true
		}
	}
	return health.Finding{}, false
}

// Probe is one diagnostic step.
type Probe interface {
	Name() string
	Description() string
	// NeedsConnection reports whether Run uses Env.DB.
	NeedsConnection() bool
	// Gates reports whether an error from this probe must skip every later
	// probe that needs a connection.
	Gates() bool
	Run(ctx context.Context, env Env) health.Finding
}

// Settings carries the policy values the standard probes are built from.
type Settings struct {
	QueryTimeout      time.Duration
	StabilityRuns     int
	StabilityInterval time.Duration
	WarnRatio         float64
	ErrorRatio        float64
	PoolingKeys       []string
	RequirePooling    bool
	RequireTLS        bool
	TCPPrecheck       bool
	DialTimeout       time.Duration
}

// DefaultSettings mirrors the default policy.
func DefaultSettings() Settings {
	return Settings{
		QueryTimeout:      30 * time.Second,
		StabilityRuns:     3,
		StabilityInterval: time.Second,
		WarnRatio:         0.8,
		PoolingKeys:       dsn.DefaultPoolingKeys,
		DialTimeout:       5 * time.Second,
	}
}

// Standard returns the probes in execution order.
func Standard(s Settings) []Probe {
	rt := NewRoundTrip(s.QueryTimeout)

	probes := []Probe{
		&Environment{PoolingKeys: s.PoolingKeys, RequirePooling: s.RequirePooling},
		&TLS{RequireTLS: s.RequireTLS},
	}
	if s.TCPPrecheck {
		probes = append(probes, &Reachability{Timeout: s.DialTimeout})
	}
	return append(probes,
		&Connectivity{RoundTrip: rt},
		&Stability{RoundTrip: rt, Runs: s.StabilityRuns, Interval: s.StabilityInterval},
		&Metadata{RoundTrip: rt},
		&Pressure{RoundTrip: rt, WarnRatio: s.WarnRatio, ErrorRatio: s.ErrorRatio},
	)
}
