package runner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"frameworks/dbdoctor/pkg/report"
)

// RunAll runs an independent pipeline per descriptor, at most maxParallel at
// a time. Reports keep the order of raws.
func (r *Runner) RunAll(ctx context.Context, raws []string, maxParallel int) *report.Batch {
	reports := make([]*report.Report, len(raws))

	g, ctx := errgroup.WithContext(ctx)
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}
	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			reports[i] = r.Run(ctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	return report.NewBatch(reports)
}
