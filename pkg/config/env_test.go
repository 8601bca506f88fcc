package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestFirstEnv(t *testing.T) {
	t.Setenv("DBDOCTOR_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "postgres://a@b:1/c")
	if got := FirstEnv("DBDOCTOR_DATABASE_URL", "DATABASE_URL"); got != "postgres://a@b:1/c" {
		t.Fatalf("expected fallback to DATABASE_URL, got %q", got)
	}
	t.Setenv("DBDOCTOR_DATABASE_URL", "  postgres://x@y:2/z ")
	if got := FirstEnv("DBDOCTOR_DATABASE_URL", "DATABASE_URL"); got != "postgres://x@y:2/z" {
		t.Fatalf("expected prefixed key to win, got %q", got)
	}
	t.Setenv("DBDOCTOR_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	if got := FirstEnv("DBDOCTOR_DATABASE_URL", "DATABASE_URL"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if GetLogLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level")
	}
	t.Setenv("LOG_LEVEL", "WARN")
	if GetLogLevel() != logrus.WarnLevel {
		t.Fatalf("expected warn level")
	}
	t.Setenv("LOG_LEVEL", "error")
	if GetLogLevel() != logrus.ErrorLevel {
		t.Fatalf("expected error level")
	}
	t.Setenv("LOG_LEVEL", "")
	if GetLogLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level by default")
	}
}

func TestLoadEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	if err := os.WriteFile(file, []byte("DBDOCTOR_TEST_A=from-file\nDBDOCTOR_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DBDOCTOR_TEST_A", "from-process")
	t.Setenv("DBDOCTOR_TEST_B", "")
	os.Unsetenv("DBDOCTOR_TEST_B")

	loaded := LoadEnv(logrus.New(), file, filepath.Join(dir, "missing.env"))
	if len(loaded) != 1 || loaded[0] != file {
		t.Fatalf("expected only %s to load, got %v", file, loaded)
	}
	if got := os.Getenv("DBDOCTOR_TEST_A"); got != "from-process" {
		t.Fatalf("process env must win, got %q", got)
	}
	if got := os.Getenv("DBDOCTOR_TEST_B"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	os.Unsetenv("DBDOCTOR_TEST_B")
}

func TestLoadEnv_LaterFileOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ".env")
	local := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(base, []byte("DBDOCTOR_TEST_URL=from-env\nDBDOCTOR_TEST_ONLY_BASE=base\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	if err := os.WriteFile(local, []byte("DBDOCTOR_TEST_URL=from-env-local\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DBDOCTOR_TEST_URL", "")
	t.Setenv("DBDOCTOR_TEST_ONLY_BASE", "")
	os.Unsetenv("DBDOCTOR_TEST_URL")
	os.Unsetenv("DBDOCTOR_TEST_ONLY_BASE")

	loaded := LoadEnv(nil, base, local)
	if len(loaded) != 2 {
		t.Fatalf("expected both files to load, got %v", loaded)
	}
	if got := os.Getenv("DBDOCTOR_TEST_URL"); got != "from-env-local" {
		t.Fatalf(".env.local must override .env, got %q", got)
	}
	if got := os.Getenv("DBDOCTOR_TEST_ONLY_BASE"); got != "base" {
		t.Fatalf("expected value from .env, got %q", got)
	}

	t.Setenv("DBDOCTOR_TEST_URL", "from-process")
	LoadEnv(nil, base, local)
	if got := os.Getenv("DBDOCTOR_TEST_URL"); got != "from-process" {
		t.Fatalf("process env must win over both files, got %q", got)
	}
}
