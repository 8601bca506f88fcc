package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"

	"frameworks/dbdoctor/pkg/health"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want health.Category
	}{
		{`pq: password authentication failed for user "app"`, health.CategoryCredentials},
		{"authentication failed", health.CategoryCredentials},
		{`pq: no pg_hba.conf entry for host "10.0.0.1"`, health.CategoryCredentials},
		{"dial tcp 127.0.0.1:5432: connect: connection refused", health.CategoryNetwork},
		{"timeout exceeded", health.CategoryNetwork},
		{"read tcp: i/o timeout", health.CategoryNetwork},
		{"dial tcp: lookup db.invalid: no such host", health.CategoryNetwork},
		{"canceling query due to user request", health.CategoryNetwork},
		{`pq: database "mydb" does not exist`, health.CategoryMissingResource},
		{`pq: role "ghost" does not exist`, health.CategoryMissingResource},
		{"pq: syntax error at or near \"SELEC\"", health.CategoryUnknown},
		{"", health.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := Message(tt.msg); got != tt.want {
				t.Fatalf("Message(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
}

func TestMessage_CredentialsBeatNetwork(t *testing.T) {
	msg := "could not connect to server: authentication failed for user \"app\""
	for i := 0; i < 3; i++ {
		if got := Message(msg); got != health.CategoryCredentials {
			t.Fatalf("run %d: expected credentials, got %s", i, got)
		}
	}
}

func TestMessage_CaseInsensitive(t *testing.T) {
	if got := Message("FATAL: PASSWORD AUTHENTICATION FAILED"); got != health.CategoryCredentials {
		t.Fatalf("expected credentials, got %s", got)
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want health.Category
	}{
		{"nil", nil, health.CategoryUnknown},
		{"invalid password sqlstate", &pq.Error{Code: "28P01", Message: "nope"}, health.CategoryCredentials},
		{"missing database sqlstate", &pq.Error{Code: "3D000", Message: "nope"}, health.CategoryMissingResource},
		{"too many connections", &pq.Error{Code: "53300", Message: "sorry, too many clients already"}, health.CategoryCapacity},
		{"connection exception", &pq.Error{Code: "08006", Message: "connection failure"}, health.CategoryNetwork},
		{"statement timeout", &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}, health.CategoryNetwork},
		{"unmapped sqlstate falls back to message", &pq.Error{Code: "42P01", Message: `relation "x" does not exist`}, health.CategoryMissingResource},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), health.CategoryNetwork},
		{"dns", &net.DNSError{Err: "no such host", Name: "db.invalid"}, health.CategoryNetwork},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, health.CategoryNetwork},
		{"plain", errors.New("something odd"), health.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Error(tt.err); got != tt.want {
				t.Fatalf("Error(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	for _, c := range health.Categories {
		rec := Recommend(c)
		if rec.Category != c {
			t.Fatalf("Recommend(%s) returned category %s", c, rec.Category)
		}
		if rec.Text == "" {
			t.Fatalf("Recommend(%s) returned empty advice", c)
		}
	}

	rec := Recommend(health.Category("bogus"))
	if rec.Category != health.CategoryUnknown {
		t.Fatalf("expected unknown fallback, got %s", rec.Category)
	}
}

func TestRecommendation(t *testing.T) {
	rec := Recommendation(errors.New("password authentication failed"))
	if rec.Category != health.CategoryCredentials {
		t.Fatalf("expected credentials advice, got %+v", rec)
	}
}
