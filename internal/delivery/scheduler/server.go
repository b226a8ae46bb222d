package scheduler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"market/config"
	"market/internal/delivery"
	"market/internal/delivery/api/response"
	"market/internal/delivery/middleware"
	"market/internal/domain/lifecycle"
	"market/internal/errors"
	"market/internal/infra/metrics"
	"market/internal/usecase"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

// ServerParams holds dependencies for the scheduler server
type ServerParams struct {
	fx.In

	Lc          fx.Lifecycle
	Cfg         *config.Config
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Maintenance usecase.MaintenanceUsecase
}

type scheduledJob struct {
	name     string
	schedule string
	id       cron.EntryID
}

type schedulerServer struct {
	port   int
	logger *slog.Logger
	cron   *cron.Cron
	server *echo.Echo
	jobs   []scheduledJob

	// runCtx is handed to every job run and canceled on shutdown.
	runCtx    context.Context
	cancelRun context.CancelFunc
}

// NewServer registers the enabled jobs and returns the delivery that runs them
// next to a small HTTP server exposing /health and /metrics.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv, err := newSchedulerServer(params.Cfg, params.Logger, params.Metrics, params.Maintenance)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

func newSchedulerServer(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	maintenance usecase.MaintenanceUsecase,
) (*schedulerServer, error) {
	if cfg.Scheduler == nil {
		return nil, errors.New("scheduler section is missing")
	}

	cronLog := cronLogger{logger: logger}
	runCtx, cancel := context.WithCancel(context.Background())
	srv := &schedulerServer{
		port:   cfg.Scheduler.Port,
		logger: logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		runCtx:    runCtx,
		cancelRun: cancel,
	}

	for _, def := range maintenanceJobs(cfg.Scheduler.Jobs, maintenance, logger) {
		if !def.cfg.Enabled {
			logger.Info("Job disabled", slog.String("job", def.job.Name))

			continue
		}

		job := Chain(def.job,
			WithLogging(logger),
			WithMetrics(m),
			WithRetry(cfg.Scheduler.MaxRetries, def.cfg.Backoff, logger),
		)
		id, err := srv.cron.AddFunc(def.cfg.Schedule, func() {
			_ = job.Run(srv.runCtx)
		})
		if err != nil {
			cancel()

			return nil, errors.Wrapf(err, "invalid schedule %q for job %s", def.cfg.Schedule, def.job.Name)
		}
		srv.jobs = append(srv.jobs, scheduledJob{name: def.job.Name, schedule: def.cfg.Schedule, id: id})
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(middleware.NewRequestIDMiddleware(logger).Process)
	e.Use(middleware.NewLoggerMiddleware(logger, cfg).Handle)
	e.GET("/health", srv.health)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	srv.server = e

	return srv, nil
}

type jobStatus struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Next     *time.Time `json:"next,omitempty"`
	Previous *time.Time `json:"previous,omitempty"`
}

func (s *schedulerServer) health(c echo.Context) error {
	statuses := make([]jobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		status := jobStatus{Name: job.name, Schedule: job.schedule}
		entry := s.cron.Entry(job.id)
		if !entry.Next.IsZero() {
			status.Next = &entry.Next
		}
		if !entry.Prev.IsZero() {
			status.Previous = &entry.Prev
		}
		statuses = append(statuses, status)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"status": "ok",
		"jobs":   statuses,
	})
}

// Serve starts the cron runner and the health HTTP server.
func (s *schedulerServer) Serve(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info("Scheduler started", slog.Int("jobs", len(s.jobs)))

	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.port))
	s.logger.Info("Starting Scheduler HTTP server", slog.String("host_port", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}

	return nil
}

// stop waits for running jobs up to the shutdown timeout, then cancels them.
func (s *schedulerServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down Scheduler")

	select {
	case <-s.cron.Stop().Done():
	case <-shutdownCtx.Done():
		s.logger.Warn("Running jobs did not finish before shutdown")
	}
	s.cancelRun()

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}

// cronLogger adapts slog to the logger interface of robfig/cron.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.Any("error", err))...)
}
