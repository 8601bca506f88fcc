package logging

import "testing"

func TestNewLogger_VerboseForcesDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	if l := NewLogger(false); l.GetLevel() != ErrorLevel {
		t.Fatalf("expected LOG_LEVEL to apply, got %s", l.GetLevel())
	}
	if l := NewLogger(true); l.GetLevel() != DebugLevel {
		t.Fatalf("expected verbose to force debug, got %s", l.GetLevel())
	}
}

func TestNewDiscard(t *testing.T) {
	l := NewDiscard()
	entry := l.WithField("k", "v")
	if entry == nil {
		t.Fatalf("expected non-nil entry")
	}
	entry.Info("dropped")
}
