package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

const (
	activeConnectionsQuery = "SELECT count(*) FROM pg_stat_activity"
	maxConnectionsQuery    = "SHOW max_connections"
)

// Pressure compares open connections against max_connections. Like
// Metadata, failing to read the numbers is only a warning.
type Pressure struct {
	RoundTrip RoundTrip
	// WarnRatio: utilization strictly above it is a warning.
	WarnRatio float64
	// ErrorRatio: utilization strictly above it is an error. Zero disables
	// escalation.
	ErrorRatio float64
}

func (p *Pressure) Name() string { return PressureName }

func (p *Pressure) Description() string {
	return "Compare open connections with max_connections"
}

func (p *Pressure) NeedsConnection() bool { return true }

func (p *Pressure) Gates() bool { return false }

func (p *Pressure) Run(ctx context.Context, env Env) health.Finding {
	var (
		active int
		rawMax string
	)
	start := time.Now()
	err := p.RoundTrip.Do(ctx, func(ctx context.Context) error {
		if err := env.DB.QueryRowContext(ctx, activeConnectionsQuery).Scan(&active); err != nil {
			return err
		}
		return env.DB.QueryRowContext(ctx, maxConnectionsQuery).Scan(&rawMax)
	})
	elapsed := time.Since(start)
	if err != nil {
		return health.Warn(p.Name(), fmt.Sprintf("could not read connection usage: %v", err), classify.Recommendation(err)).
			WithDuration(elapsed)
	}

	maxConns, err := strconv.Atoi(strings.TrimSpace(rawMax))
	if err != nil || maxConns <= 0 {
		return health.Warn(p.Name(), fmt.Sprintf("unexpected max_connections value %q", rawMax), classify.Recommend(health.CategoryUnknown)).
			WithDuration(elapsed)
	}

	f := Utilization(p.Name(), active, maxConns, p.WarnRatio, p.ErrorRatio)
	return f.WithDuration(elapsed)
}

// Utilization grades active/max against the thresholds.
func Utilization(probe string, active, maxConns int, warnRatio, errorRatio float64) health.Finding {
	ratio := float64(active) / float64(maxConns)
	msg := fmt.Sprintf("%d of %d connections in use (%.0f%%)", active, maxConns, ratio*100)

	var f health.Finding
	switch {
	case errorRatio > 0 && ratio > errorRatio:
		f = health.Fail(probe, msg, classify.Recommend(health.CategoryCapacity))
	case ratio > warnRatio:
		f = health.Warn(probe, msg, classify.Recommend(health.CategoryCapacity))
	default:
		f = health.OK(probe, msg)
	}
	return f.
		WithMetadata("active_connections", strconv.Itoa(active)).
		WithMetadata("max_connections", strconv.Itoa(maxConns)).
		WithMetadata("utilization", strconv.FormatFloat(ratio, 'f', 4, 64))
}
