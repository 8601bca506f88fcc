package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"
)

// RoundTrip bounds a single store round-trip with a failsafe timeout policy.
// It never retries: a failed round-trip is reported, not repeated.
type RoundTrip struct {
	limit    time.Duration
	executor failsafe.Executor[any]
}

// NewRoundTrip returns a RoundTrip with the given budget. A zero budget
// disables the timeout.
func NewRoundTrip(limit time.Duration) RoundTrip {
	rt := RoundTrip{limit: limit}
	if limit > 0 {
		rt.executor = failsafe.With[any](timeout.NewBuilder[any](limit).Build())
	}
	return rt
}

// Limit is the configured budget.
func (rt RoundTrip) Limit() time.Duration {
	return rt.limit
}

// Do runs fn under the timeout. fn must honour the context it is given.
func (rt RoundTrip) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if rt.executor == nil {
		return fn(ctx)
	}
	err := rt.executor.WithContext(ctx).RunWithExecution(func(exec failsafe.Execution[any]) error {
		return fn(exec.Context())
	})
	if errors.Is(err, timeout.ErrExceeded) {
		return fmt.Errorf("query timeout after %s: %w", rt.limit, err)
	}
	return err
}
