package impl

import (
	"context"
	"log/slog"
	"time"

	"market/config"
	"market/internal/domain/entity"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"

	"go.uber.org/fx"
)

// pendingOrderGrace is how long a new order stays pending before the
// scheduler confirms it.
const pendingOrderGrace = 5 * time.Minute

// maintenanceService implements the MaintenanceUsecase interface.
type maintenanceService struct {
	store          repository.Store
	mailer         service.Mailer
	serviceName    string
	tokenRetention time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// MaintenanceServiceParams holds dependencies for MaintenanceService, injected by Fx.
type MaintenanceServiceParams struct {
	fx.In

	Store  repository.Store
	Mailer service.Mailer
	Config *config.Config
	Logger *slog.Logger
}

// NewMaintenanceService is the constructor for maintenanceService.
func NewMaintenanceService(params MaintenanceServiceParams) usecase.MaintenanceUsecase {
	return &maintenanceService{
		store:          params.Store,
		mailer:         params.Mailer,
		serviceName:    params.Config.Env.ServiceName,
		tokenRetention: params.Config.Auth.TokenRetention,
		now:            time.Now,
		logger:         params.Logger,
	}
}

func (srv *maintenanceService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	now := srv.now().UTC()

	removed, err := srv.store.Tokens().DeleteExpired(ctx, now, now.Add(-srv.tokenRetention))
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired tokens")
	}

	srv.logger.Info("Expired tokens removed", slog.Int64("count", removed))

	return removed, nil
}

// SendDailyReports sends synchronously so a failed delivery fails the job
// and is retried.
func (srv *maintenanceService) SendDailyReports(ctx context.Context) (*usecase.DailyReport, error) {
	report, err := srv.buildReport(ctx)
	if err != nil {
		return nil, err
	}

	admins, err := srv.store.Users().FilterBy(ctx, repository.Fields{"role": entity.RoleAdmin, "is_active": true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load administrators")
	}
	if len(admins) == 0 {
		srv.logger.Info("No administrators to receive the daily report")

		return report, nil
	}

	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.Email)
	}
	report.Recipients = len(recipients)

	msg, err := dailyReportMessage(srv.serviceName, recipients, report)
	if err != nil {
		return nil, err
	}
	if err := srv.mailer.Send(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "failed to send daily report")
	}

	srv.logger.Info("Daily report sent",
		slog.Int("recipients", report.Recipients),
		slog.Int64("orders", report.Orders),
		slog.Int("pendingOrders", report.PendingOrders),
	)

	return report, nil
}

func (srv *maintenanceService) buildReport(ctx context.Context) (*usecase.DailyReport, error) {
	report := &usecase.DailyReport{GeneratedAt: srv.now().UTC()}

	counts := []struct {
		name  string
		count func(context.Context) (int64, error)
		dst   *int64
	}{
		{"users", srv.store.Users().Count, &report.Users},
		{"businesses", srv.store.Businesses().Count, &report.Businesses},
		{"items", srv.store.Items().Count, &report.Items},
		{"orders", srv.store.Orders().Count, &report.Orders},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to count %s", c.name)
		}
		*c.dst = n
	}

	pending, err := srv.store.Orders().FilterBy(ctx, repository.Fields{"status": entity.OrderStatusPending})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pending orders")
	}
	report.PendingOrders = len(pending)

	return report, nil
}

// ProcessPendingOrders confirms each order in its own transaction so one bad
// order does not hold back the rest. The status is re-read inside the
// transaction because a customer may have cancelled in the meantime.
func (srv *maintenanceService) ProcessPendingOrders(ctx context.Context) (int, error) {
	pending, err := srv.store.Orders().FilterBy(ctx, repository.Fields{"status": entity.OrderStatusPending})
	if err != nil {
		return 0, errors.Wrap(err, "failed to load pending orders")
	}

	cutoff := srv.now().Add(-pendingOrderGrace)
	confirmed := 0
	var errs []error

	for _, order := range pending {
		if order.CreatedAt.After(cutoff) {
			continue
		}

		changed := false
		err := srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
			current, err := tx.Orders().FindByID(ctx, order.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if current.Status != entity.OrderStatusPending {
				return nil
			}

			if _, err := tx.Orders().Update(ctx, order.ID, repository.Fields{"status": entity.OrderStatusConfirmed}); err != nil {
				return err
			}
			changed = true

			return nil
		})
		if err != nil {
			srv.logger.Warn("Failed to confirm pending order", slog.Any("orderID", order.ID), slog.Any("error", err))
			errs = append(errs, errors.Wrapf(err, "order %s", order.ID))

			continue
		}
		if changed {
			confirmed++
		}
	}

	srv.logger.Info("Pending orders processed", slog.Int("confirmed", confirmed), slog.Int("failed", len(errs)))

	return confirmed, errors.Join(errs...)
}
