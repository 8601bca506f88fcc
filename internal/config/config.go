package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"frameworks/dbdoctor/pkg/database"
	"frameworks/dbdoctor/pkg/dsn"
	"frameworks/dbdoctor/pkg/probe"
)

// DefaultPath is looked up in the working directory when no policy file is
// named explicitly.
const DefaultPath = "dbdoctor.yaml"

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		QueryTimeout:   30 * time.Second,
		ConnectTimeout: 10 * time.Second,
		DialTimeout:    5 * time.Second,
		Stability: Stability{
			Repetitions: 3,
			Interval:    time.Second,
		},
		Pressure: Pressure{
			WarnRatio: 0.8,
		},
		PoolingParams:  append([]string(nil), dsn.DefaultPoolingKeys...),
		FailOnDegraded: true,
		MaxParallel:    4,
	}
}

// Load reads the policy at path. An empty path falls back to DefaultPath, and
// a missing default file yields Default(); a missing explicit file is an error.
func Load(path string) (Policy, string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Default(), "", nil
	}
	if err != nil {
		return Policy{}, path, fmt.Errorf("read policy: %w", err)
	}
	p, err := Parse(b)
	if err != nil {
		return Policy{}, path, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, path, nil
}

// Parse decodes b on top of Default and validates the result. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func Parse(b []byte) (Policy, error) {
	p := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Policy{}, err
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate rejects values no probe can work with.
func (p Policy) Validate() error {
	var errs []error
	if p.QueryTimeout <= 0 {
		errs = append(errs, errors.New("query_timeout must be positive"))
	}
	if p.ConnectTimeout < 0 {
		errs = append(errs, errors.New("connect_timeout must not be negative"))
	}
	if p.DialTimeout <= 0 {
		errs = append(errs, errors.New("dial_timeout must be positive"))
	}
	if p.Stability.Repetitions < 1 {
		errs = append(errs, errors.New("stability.repetitions must be at least 1"))
	}
	if p.Stability.Interval < 0 {
		errs = append(errs, errors.New("stability.interval must not be negative"))
	}
	if p.Pressure.WarnRatio <= 0 || p.Pressure.WarnRatio > 1 {
		errs = append(errs, fmt.Errorf("pressure.warn_ratio must be in (0, 1], got %v", p.Pressure.WarnRatio))
	}
	if p.Pressure.ErrorRatio != 0 && (p.Pressure.ErrorRatio < p.Pressure.WarnRatio || p.Pressure.ErrorRatio > 1) {
		errs = append(errs, fmt.Errorf("pressure.error_ratio must be 0 or in [warn_ratio, 1], got %v", p.Pressure.ErrorRatio))
	}
	if len(p.PoolingParams) == 0 {
		errs = append(errs, errors.New("pooling_params must list at least one key"))
	}
	if p.MaxParallel < 1 {
		errs = append(errs, errors.New("max_parallel must be at least 1"))
	}
	return errors.Join(errs...)
}

// ProbeSettings converts the policy into probe construction settings.
func (p Policy) ProbeSettings() probe.Settings {
	return probe.Settings{
		QueryTimeout:      p.QueryTimeout,
		StabilityRuns:     p.Stability.Repetitions,
		StabilityInterval: p.Stability.Interval,
		WarnRatio:         p.Pressure.WarnRatio,
		ErrorRatio:        p.Pressure.ErrorRatio,
		PoolingKeys:       p.PoolingParams,
		RequirePooling:    p.RequirePooling,
		RequireTLS:        p.RequireTLS,
		TCPPrecheck:       p.TCPPrecheck,
		DialTimeout:       p.DialTimeout,
	}
}

// DatabaseConfig returns the connection settings for the diagnostic session.
func (p Policy) DatabaseConfig() database.Config {
	cfg := database.DefaultConfig()
	cfg.ConnectTimeout = p.ConnectTimeout
	return cfg
}
