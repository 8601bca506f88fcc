package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

// Stability repeats the minimal round-trip with a fixed pause between runs
// so transient drops spread over wall-clock time are caught.
type Stability struct {
	RoundTrip RoundTrip
	Runs      int
	Interval  time.Duration
}

func (p *Stability) Name() string { return StabilityName }

func (p *Stability) Description() string {
	return "Repeat SELECT 1 with a fixed delay and record latencies"
}

func (p *Stability) NeedsConnection() bool { return true }

func (p *Stability) Gates() bool { return false }

func (p *Stability) Run(ctx context.Context, env Env) health.Finding {
	runs := p.Runs
	if runs < 1 {
		runs = 1
	}

	latencies := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		if i > 0 {
			if err := sleep(ctx, p.Interval); err != nil {
				return p.fail(i+1, runs, err)
			}
		}

		start := time.Now()
		err := p.RoundTrip.Do(ctx, func(ctx context.Context) error {
			var one int
			return env.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one)
		})
		if err != nil {
			return p.fail(i+1, runs, err)
		}
		latencies = append(latencies, time.Since(start))
	}

	lo, hi, total := latencies[0], latencies[0], time.Duration(0)
	for _, l := range latencies {
		lo = min(lo, l)
		hi = max(hi, l)
		total += l
	}

	msg := fmt.Sprintf("%d/%d round-trips succeeded (min %v, max %v)", runs, runs, lo.Round(time.Millisecond), hi.Round(time.Millisecond))
	if base, ok := env.PriorFinding(ConnectivityName); ok {
		if d, ok := base.Duration(); ok {
			msg += fmt.Sprintf(", first connect %v", d.Round(time.Millisecond))
		}
	}

	return health.OK(p.Name(), msg).
		WithDuration(total/time.Duration(len(latencies))).
		WithMetadata("count", strconv.Itoa(runs)).
		WithMetadata("min_ms", strconv.FormatInt(lo.Milliseconds(), 10)).
		WithMetadata("max_ms", strconv.FormatInt(hi.Milliseconds(), 10))
}

func (p *Stability) fail(attempt, runs int, err error) health.Finding {
	return health.Fail(p.Name(),
		fmt.Sprintf("round-trip %d/%d failed: %v", attempt, runs, err),
		classify.Recommend(health.CategoryStability))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
