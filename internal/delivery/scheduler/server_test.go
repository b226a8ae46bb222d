package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"market/config"
	"market/internal/infra/metrics"
	"market/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMaintenance struct {
	mock.Mock
}

func (m *mockMaintenance) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMaintenance) SendDailyReports(ctx context.Context) (*usecase.DailyReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*usecase.DailyReport)

	return report, args.Error(1)
}

func (m *mockMaintenance) ProcessPendingOrders(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	return args.Int(0), args.Error(1)
}

func schedulerConfig() *config.Config {
	cfg := &config.Config{
		Scheduler: &config.SchedulerConfig{
			MaxRetries: 3,
			Jobs: config.JobsConfig{
				CleanupExpiredTokens: config.JobConfig{Enabled: true, Schedule: "0 2 * * *", Backoff: time.Millisecond},
				SendDailyReports:     config.JobConfig{Enabled: false, Schedule: "0 9 * * *", Backoff: time.Millisecond},
				ProcessPendingOrders: config.JobConfig{Enabled: true, Schedule: "*/5 * * * *", Backoff: time.Millisecond},
			},
		},
	}

	return cfg
}

func TestNewSchedulerServer_RegistersEnabledJobs(t *testing.T) {
	srv, err := newSchedulerServer(schedulerConfig(), discardLogger(), metrics.New(), &mockMaintenance{})
	require.NoError(t, err)

	names := make([]string, 0, len(srv.jobs))
	for _, job := range srv.jobs {
		names = append(names, job.name)
	}
	assert.Equal(t, []string{JobCleanupExpiredTokens, JobProcessPendingOrders}, names)
	assert.Len(t, srv.cron.Entries(), 2)
}

func TestNewSchedulerServer_RejectsBadConfig(t *testing.T) {
	_, err := newSchedulerServer(&config.Config{}, discardLogger(), metrics.New(), &mockMaintenance{})
	assert.Error(t, err)

	cfg := schedulerConfig()
	cfg.Scheduler.Jobs.CleanupExpiredTokens.Schedule = "every tuesday"
	_, err = newSchedulerServer(cfg, discardLogger(), metrics.New(), &mockMaintenance{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobCleanupExpiredTokens)
}

func TestScheduledJob_RetriesAndRecordsMetrics(t *testing.T) {
	maintenance := &mockMaintenance{}
	maintenance.On("ProcessPendingOrders", mock.Anything).Return(0, assert.AnError).Twice()
	maintenance.On("ProcessPendingOrders", mock.Anything).Return(2, nil).Once()

	m := metrics.New()
	srv, err := newSchedulerServer(schedulerConfig(), discardLogger(), m, maintenance)
	require.NoError(t, err)

	var pending scheduledJob
	for _, job := range srv.jobs {
		if job.name == JobProcessPendingOrders {
			pending = job
		}
	}
	srv.cron.Entry(pending.id).Job.Run()

	maintenance.AssertNumberOfCalls(t, "ProcessPendingOrders", 3)
	assert.Equal(t, 1.0, jobRuns(t, m, JobProcessPendingOrders, metrics.OutcomeSuccess))
}

func TestSchedulerHealth(t *testing.T) {
	srv, err := newSchedulerServer(schedulerConfig(), discardLogger(), metrics.New(), &mockMaintenance{})
	require.NoError(t, err)
	srv.cron.Start()
	t.Cleanup(func() { <-srv.cron.Stop().Done() })

	rec := httptest.NewRecorder()
	srv.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Status string      `json:"status"`
			Jobs   []jobStatus `json:"jobs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data.Status)
	require.Len(t, body.Data.Jobs, 2)
	for _, job := range body.Data.Jobs {
		require.NotNil(t, job.Next, job.Name)
		assert.True(t, job.Next.After(time.Now().Add(-time.Second)))
	}

	rec = httptest.NewRecorder()
	srv.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
