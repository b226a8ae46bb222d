// Package scheduler runs the recurring maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "market/internal/delivery/context"
	"market/internal/errors"
	"market/internal/infra/metrics"
	"market/internal/util"

	"github.com/cenkalti/backoff/v4"
)

// Job is one named unit of recurring work.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Middleware decorates a job. The returned job keeps the same name.
type Middleware func(next Job) Job

// Chain wraps job with mws. The first middleware is the outermost.
func Chain(job Job, mws ...Middleware) Job {
	for i := len(mws) - 1; i >= 0; i-- {
		job = mws[i](job)
	}

	return job
}

// WithLogging logs the start and the final outcome of every run.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next Job) Job {
		return Job{Name: next.Name, Run: func(ctx context.Context) error {
			log := deliverycontext.GetLoggerOrDefault(ctx, logger).With(slog.String("job", next.Name))
			log.Info("Job started")

			start := time.Now()
			err := next.Run(ctx)
			elapsed := util.FormatDuration(time.Since(start))
			if err != nil {
				log.Error("Job failed", slog.String("elapsed", elapsed), slog.Any("error", err))

				return err
			}
			log.Info("Job finished", slog.String("elapsed", elapsed))

			return nil
		}}
	}
}

// WithMetrics records one observation per run, after any retries.
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next Job) Job {
		return Job{Name: next.Name, Run: func(ctx context.Context) error {
			start := time.Now()
			err := next.Run(ctx)
			m.ObserveJob(next.Name, err != nil, time.Since(start))

			return err
		}}
	}
}

// WithRetry re-runs a failed job up to maxRetries more times, waiting interval
// between attempts. A canceled context stops the retries.
func WithRetry(maxRetries uint64, interval time.Duration, logger *slog.Logger) Middleware {
	return func(next Job) Job {
		return Job{Name: next.Name, Run: func(ctx context.Context) error {
			policy := backoff.WithContext(
				backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), maxRetries),
				ctx,
			)

			attempt := 0
			operation := func() error {
				attempt++
				err := next.Run(ctx)
				if err != nil && ctx.Err() != nil {
					return backoff.Permanent(err)
				}

				return err
			}
			notify := func(err error, wait time.Duration) {
				deliverycontext.GetLoggerOrDefault(ctx, logger).Warn("Job attempt failed, retrying",
					slog.String("job", next.Name),
					slog.Int("attempt", attempt),
					slog.Duration("wait", wait),
					slog.Any("error", err),
				)
			}

			if err := backoff.RetryNotify(operation, policy, notify); err != nil {
				return errors.Wrapf(err, "job %s failed after %d attempts", next.Name, attempt)
			}

			return nil
		}}
	}
}
