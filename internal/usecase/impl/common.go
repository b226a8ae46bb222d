package impl

import (
	"context"
	"log/slog"

	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	"market/internal/domain/lifecycle"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/usecase"
)

func usersOf(s repository.Store) repository.Repository[entity.User] { return s.Users() }
func businessesOf(s repository.Store) repository.Repository[entity.Business] { return s.Businesses() }
func categoriesOf(s repository.Store) repository.Repository[entity.Category] { return s.Categories() }
func itemsOf(s repository.Store) repository.Repository[entity.Item] { return s.Items() }
func ordersOf(s repository.Store) repository.Repository[entity.Order] { return s.Orders() }
func orderItemsOf(s repository.Store) repository.Repository[entity.OrderItem] { return s.OrderItems() }
func reviewsOf(s repository.Store) repository.Repository[entity.Review] { return s.Reviews() }

// paginate cuts a window out of an already loaded result set.
func paginate[T any](all []*T, page repository.Page) *usecase.PageResult[T] {
	start := min(page.Offset, len(all))
	end := min(start+page.Limit, len(all))

	return &usecase.PageResult[T]{
		Items:  all[start:end],
		Offset: page.Offset,
		Limit:  page.Limit,
		Total:  int64(len(all)),
	}
}

// mailDispatcher sends mail in the background. Failures are logged and never
// reach the caller.
type mailDispatcher struct {
	mailer service.Mailer
	logger *slog.Logger
}

// send returns immediately. done, when set, is called after the attempt.
func (d *mailDispatcher) send(ctx context.Context, msg *service.Message, done func(error)) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, d.logger)
	ctx = context.WithoutCancel(ctx)

	go func() {
		sendCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
		defer cancel()

		err := d.mailer.Send(sendCtx, msg)
		if err != nil {
			logger.Warn("Email delivery failed", slog.String("subject", msg.Subject), slog.Any("error", err))
		}
		if done != nil {
			done(err)
		}
	}()
}
