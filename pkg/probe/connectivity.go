package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

// Connectivity issues the minimal round-trip. Every later probe that needs a
// connection depends on it.
type Connectivity struct {
	RoundTrip RoundTrip
}

func (p *Connectivity) Name() string { return ConnectivityName }

func (p *Connectivity) Description() string {
	return "Open the connection and run SELECT 1"
}

func (p *Connectivity) NeedsConnection() bool { return true }

func (p *Connectivity) Gates() bool { return true }

func (p *Connectivity) Run(ctx context.Context, env Env) health.Finding {
	if env.OpenErr != nil {
		return p.fail(env.OpenErr, 0)
	}
	if env.DB == nil {
		return p.fail(errors.New("no connection handle"), 0)
	}

	start := time.Now()
	err := p.RoundTrip.Do(ctx, func(ctx context.Context) error {
		var one int
		if err := env.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			return err
		}
		if one != 1 {
			return fmt.Errorf("SELECT 1 returned %d", one)
		}
		return nil
	})
	elapsed := time.Since(start)
	if err != nil {
		return p.fail(err, elapsed)
	}

	return health.OK(p.Name(), fmt.Sprintf("Connected successfully (latency: %v)", elapsed.Round(time.Millisecond))).
		WithDuration(elapsed)
}

func (p *Connectivity) fail(err error, elapsed time.Duration) health.Finding {
	return health.Fail(p.Name(), fmt.Sprintf("connection failed: %v", err), classify.Recommendation(err)).
		WithDuration(elapsed)
}
