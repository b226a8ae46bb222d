package usecase

import (
	"context"
	"time"
)

// DailyReport summarises the store at the time the report ran.
type DailyReport struct {
	GeneratedAt   time.Time
	Users         int64
	Businesses    int64
	Items         int64
	Orders        int64
	PendingOrders int
	Recipients    int
}

// MaintenanceUsecase holds the work run by the recurring jobs.
type MaintenanceUsecase interface {
	// CleanupExpiredTokens removes expired tokens and tokens older than the
	// retention period, returning how many were removed.
	CleanupExpiredTokens(ctx context.Context) (int64, error)

	// SendDailyReports emails store totals to every active administrator.
	SendDailyReports(ctx context.Context) (*DailyReport, error)

	// ProcessPendingOrders confirms pending orders older than the grace
	// period and returns how many were confirmed.
	ProcessPendingOrders(ctx context.Context) (int, error)
}
