package scheduler

import (
	"context"
	"log/slog"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/usecase"
)

// Job names, also used as metric labels.
const (
	JobCleanupExpiredTokens = "cleanup-expired-tokens"
	JobSendDailyReports     = "send-daily-reports"
	JobProcessPendingOrders = "process-pending-orders"
)

// definition pairs a job with its schedule settings.
type definition struct {
	job Job
	cfg config.JobConfig
}

func maintenanceJobs(jobs config.JobsConfig, maintenance usecase.MaintenanceUsecase, logger *slog.Logger) []definition {
	return []definition{
		{
			cfg: jobs.CleanupExpiredTokens,
			job: Job{Name: JobCleanupExpiredTokens, Run: func(ctx context.Context) error {
				removed, err := maintenance.CleanupExpiredTokens(ctx)
				if err != nil {
					return err
				}
				deliverycontext.GetLoggerOrDefault(ctx, logger).Info("Expired tokens removed", slog.Int64("removed", removed))

				return nil
			}},
		},
		{
			cfg: jobs.SendDailyReports,
			job: Job{Name: JobSendDailyReports, Run: func(ctx context.Context) error {
				report, err := maintenance.SendDailyReports(ctx)
				if err != nil {
					return err
				}
				deliverycontext.GetLoggerOrDefault(ctx, logger).Info("Daily report sent",
					slog.Int("recipients", report.Recipients),
					slog.Int64("orders", report.Orders),
					slog.Int("pending_orders", report.PendingOrders),
				)

				return nil
			}},
		},
		{
			cfg: jobs.ProcessPendingOrders,
			job: Job{Name: JobProcessPendingOrders, Run: func(ctx context.Context) error {
				confirmed, err := maintenance.ProcessPendingOrders(ctx)
				if err != nil {
					return err
				}
				if confirmed > 0 {
					deliverycontext.GetLoggerOrDefault(ctx, logger).Info("Pending orders confirmed", slog.Int("confirmed", confirmed))
				}

				return nil
			}},
		},
	}
}
