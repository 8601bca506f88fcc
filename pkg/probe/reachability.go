package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"frameworks/dbdoctor/pkg/classify"
	"frameworks/dbdoctor/pkg/health"
)

// Reachability checks raw TCP connectivity to the server before any driver
// round-trip, separating "port closed" from protocol-level failures.
type Reachability struct {
	Timeout time.Duration
}

func (p *Reachability) Name() string { return ReachabilityName }

func (p *Reachability) Description() string {
	return "Dial the server's TCP port"
}

func (p *Reachability) NeedsConnection() bool { return false }

func (p *Reachability) Gates() bool { return true }

func (p *Reachability) Run(ctx context.Context, env Env) health.Finding {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	target := env.Descriptor.Address()
	dialer := &net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", target)
	elapsed := time.Since(start)
	if err != nil {
		return health.Fail(p.Name(), fmt.Sprintf("TCP connect to %s failed: %v", target, err), classify.Recommend(health.CategoryNetwork)).
			WithDuration(elapsed).
			WithMetadata("address", target)
	}
	_ = conn.Close()

	return health.OK(p.Name(), fmt.Sprintf("TCP connect to %s OK (latency: %v)", target, elapsed.Round(time.Millisecond))).
		WithDuration(elapsed).
		WithMetadata("address", target)
}
