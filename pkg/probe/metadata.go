package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

const metadataQuery = "SELECT current_database(), current_user, version(), now()"

// Metadata reads server identity. It is best-effort: a failure here only
// means introspection is not permitted, so it is reported as a warning.
type Metadata struct {
	RoundTrip RoundTrip
}

func (p *Metadata) Name() string { return MetadataName }

func (p *Metadata) Description() string {
	return "Read database, user, server version and server time"
}

func (p *Metadata) NeedsConnection() bool { return true }

func (p *Metadata) Gates() bool { return false }

func (p *Metadata) Run(ctx context.Context, env Env) health.Finding {
	var (
		database, user, version string
		serverTime              time.Time
	)
	start := time.Now()
	err := p.RoundTrip.Do(ctx, func(ctx context.Context) error {
		return env.DB.QueryRowContext(ctx, metadataQuery).Scan(&database, &user, &version, &serverTime)
	})
	elapsed := time.Since(start)
	if err != nil {
		return health.Warn(p.Name(), fmt.Sprintf("could not read server metadata: %v", err), classify.Recommendation(err)).
			WithDuration(elapsed)
	}

	flavour := "postgres"
	if strings.Contains(version, "YugabyteDB") {
		flavour = "yugabyte"
	}

	return health.OK(p.Name(), fmt.Sprintf("%s as %s on %s", database, user, shortVersion(version))).
		WithDuration(elapsed).
		WithMetadata("database", database).
		WithMetadata("user", user).
		WithMetadata("version", version).
		WithMetadata("type", flavour).
		WithMetadata("server_time", serverTime.UTC().Format(time.RFC3339))
}

// shortVersion trims "PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by ..."
// down to "PostgreSQL 16.2".
func shortVersion(v string) string {
	fields := strings.Fields(v)
	if len(fields) >= 2 {
		return strings.TrimSuffix(fields[0]+" "+fields[1], ",")
	}
	return v
}
