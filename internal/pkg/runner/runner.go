// Package runner coordinates batch runs: one in-flight run per target key,
// a bounded worker pool inside a run, and a per-run timeout.
package runner

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/period"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type Runner struct {
	group   singleflight.Group
	workers int
	timeout time.Duration
}

func New(workers int, timeout time.Duration) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers, timeout: timeout}
}

func AttendanceKey(date time.Time) string {
	return "attendance:" + period.FormatDate(date)
}

func PayrollKey(month time.Time) string {
	return "payroll:" + period.FormatMonth(month)
}

// Run executes fn under key. A caller arriving while a run for the same key
// is in flight waits for it and receives its result instead of starting a
// second run. The run keeps the first caller's context values but not its
// cancellation, and is bounded by the runner timeout.
func Run[T any](ctx context.Context, r *Runner, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	ch := r.group.DoChan(key, func() (interface{}, error) {
		runCtx := context.WithoutCancel(ctx)
		if r.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, r.timeout)
			defer cancel()
		}
		return fn(runCtx)
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// ForEach calls fn for every index in [0, n) on at most the configured number
// of workers. The first error cancels the remaining calls and is returned.
func (r *Runner) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := 0; i < n; i++ {
		if gCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fn(gCtx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
