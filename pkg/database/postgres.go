package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"frameworks/dbdoctor/pkg/dsn"
	"frameworks/dbdoctor/pkg/version"
)

// DriverName is the database/sql driver the handle is opened with.
const DriverName = "postgres"

// libpqParams are the query parameters understood by lib/pq. Anything else
// (connection_limit, pool_timeout, pgbouncer, ...) belongs to client-side
// poolers and would be sent to the server as an unknown runtime parameter.
var libpqParams = map[string]bool{
	"sslmode":                   true,
	"sslcert":                   true,
	"sslkey":                    true,
	"sslrootcert":               true,
	"sslsni":                    true,
	"connect_timeout":           true,
	"application_name":          true,
	"fallback_application_name": true,
	"options":                   true,
	"search_path":               true,
	"binary_parameters":         true,
}

// Config holds connection settings for the diagnostic session.
type Config struct {
	ConnectTimeout  time.Duration
	ApplicationName string
}

// DefaultConfig returns default database configuration
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  10 * time.Second,
		ApplicationName: version.ApplicationName(),
	}
}

// Opener acquires the single live handle used for a diagnostic run.
type Opener func(ctx context.Context, d dsn.ConnectionDescriptor) (*sql.DB, error)

// NewOpener returns an Opener backed by lib/pq.
func NewOpener(cfg Config) Opener {
	return func(ctx context.Context, d dsn.ConnectionDescriptor) (*sql.DB, error) {
		db, err := sql.Open(DriverName, ConnString(d, cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// One session: probes run strictly one after another.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return db, nil
	}
}

// ConnString renders d for lib/pq, dropping pooler-only parameters and
// filling connect_timeout and application_name when absent.
func ConnString(d dsn.ConnectionDescriptor, cfg Config) string {
	u := d.URL(func(key string) bool { return libpqParams[key] })
	q := u.Query()
	if q.Get("connect_timeout") == "" && cfg.ConnectTimeout > 0 {
		secs := int(cfg.ConnectTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	if q.Get("application_name") == "" && cfg.ApplicationName != "" {
		q.Set("application_name", cfg.ApplicationName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
