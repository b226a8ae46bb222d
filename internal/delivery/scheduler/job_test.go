package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"market/internal/errors"
	"market/internal/infra/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// jobRuns returns the market_job_runs_total value for one job and outcome.
func jobRuns(t *testing.T, m *metrics.Metrics, job, outcome string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "market_job_runs_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["job"] == job && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func TestChain_FirstMiddlewareIsOutermost(t *testing.T) {
	var calls []string
	trace := func(label string) Middleware {
		return func(next Job) Job {
			return Job{Name: next.Name, Run: func(ctx context.Context) error {
				calls = append(calls, label+":before")
				err := next.Run(ctx)
				calls = append(calls, label+":after")

				return err
			}}
		}
	}

	job := Chain(Job{Name: "noop", Run: func(context.Context) error {
		calls = append(calls, "job")

		return nil
	}}, trace("outer"), trace("inner"))

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "noop", job.Name)
	assert.Equal(t, []string{"outer:before", "inner:before", "job", "inner:after", "outer:after"}, calls)
}

func TestWithRetry(t *testing.T) {
	failure := errors.New("storage unavailable")

	tests := []struct {
		name         string
		failuresLeft int
		wantAttempts int
		wantErr      bool
	}{
		{name: "first attempt succeeds", failuresLeft: 0, wantAttempts: 1},
		{name: "succeeds on last retry", failuresLeft: 3, wantAttempts: 4},
		{name: "exhausts three retries", failuresLeft: 10, wantAttempts: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			failuresLeft := tt.failuresLeft
			job := Chain(Job{Name: "flaky", Run: func(context.Context) error {
				attempts++
				if failuresLeft > 0 {
					failuresLeft--

					return failure
				}

				return nil
			}}, WithRetry(3, time.Millisecond, discardLogger()))

			err := job.Run(context.Background())
			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, failure)
				assert.Contains(t, err.Error(), "after 4 attempts")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithRetry_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	job := Chain(Job{Name: "canceled", Run: func(ctx context.Context) error {
		attempts++
		cancel()

		return ctx.Err()
	}}, WithRetry(3, time.Hour, discardLogger()))

	err := job.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithMetrics_ObservesFinalOutcomeOnce(t *testing.T) {
	m := metrics.New()
	attempts := 0
	job := Chain(Job{Name: JobProcessPendingOrders, Run: func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}

		return nil
	}}, WithLogging(discardLogger()), WithMetrics(m), WithRetry(3, time.Millisecond, discardLogger()))

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1.0, jobRuns(t, m, JobProcessPendingOrders, metrics.OutcomeSuccess))
	assert.Zero(t, jobRuns(t, m, JobProcessPendingOrders, metrics.OutcomeError))

	failing := Chain(Job{Name: JobSendDailyReports, Run: func(context.Context) error {
		return errors.New("smtp down")
	}}, WithMetrics(m))
	require.Error(t, failing.Run(context.Background()))
	assert.Equal(t, 1.0, jobRuns(t, m, JobSendDailyReports, metrics.OutcomeError))
}
