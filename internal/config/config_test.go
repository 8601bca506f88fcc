package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_EmptyIsDefault(t *testing.T) {
	p, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	d := Default()
	if p.QueryTimeout != d.QueryTimeout || p.Stability != d.Stability || p.Pressure != d.Pressure {
		t.Fatalf("Parse(nil) = %+v, want defaults", p)
	}
	if !p.FailOnDegraded || p.MaxParallel != 4 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestParse_OverridesOnTopOfDefaults(t *testing.T) {
	p, err := Parse([]byte(`
query_timeout: 5s
stability:
  repetitions: 5
pressure:
  error_ratio: 0.95
require_tls: true
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.QueryTimeout != 5*time.Second {
		t.Fatalf("query_timeout = %v", p.QueryTimeout)
	}
	if p.Stability.Repetitions != 5 || p.Stability.Interval != time.Second {
		t.Fatalf("stability = %+v", p.Stability)
	}
	if p.Pressure.WarnRatio != 0.8 || p.Pressure.ErrorRatio != 0.95 {
		t.Fatalf("pressure = %+v", p.Pressure)
	}
	if !p.RequireTLS {
		t.Fatalf("require_tls not applied")
	}

	s := p.ProbeSettings()
	if s.StabilityRuns != 5 || s.ErrorRatio != 0.95 || !s.RequireTLS || s.QueryTimeout != 5*time.Second {
		t.Fatalf("ProbeSettings() = %+v", s)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "query_timout: 5s", "query_timout"},
		{"zero repetitions", "stability:\n  repetitions: 0", "stability.repetitions"},
		{"warn ratio above one", "pressure:\n  warn_ratio: 1.5", "warn_ratio"},
		{"error below warn", "pressure:\n  error_ratio: 0.5", "error_ratio"},
		{"no pooling keys", "pooling_params: []", "pooling_params"},
		{"bad duration", "query_timeout: soon", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.yaml)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	p, path, err := Load("")
	if err != nil || path != "" {
		t.Fatalf("Load(\"\") = %q, %v; want defaults", path, err)
	}
	if p.MaxParallel != Default().MaxParallel {
		t.Fatalf("expected defaults, got %+v", p)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}

	if err := os.WriteFile(DefaultPath, []byte("max_parallel: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p, path, err = Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != DefaultPath || p.MaxParallel != 2 {
		t.Fatalf("Load() = %+v from %q", p, path)
	}
}

func TestDatabaseConfig(t *testing.T) {
	p := Default()
	p.ConnectTimeout = 3 * time.Second
	cfg := p.DatabaseConfig()
	if cfg.ConnectTimeout != 3*time.Second || cfg.ApplicationName == "" {
		t.Fatalf("DatabaseConfig() = %+v", cfg)
	}
}
