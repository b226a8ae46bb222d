package impl

import (
	"context"
	"log/slog"

	"market/config"
	deliverycontext "market/internal/delivery/context"
	"market/internal/domain/entity"
	domainerrors "market/internal/domain/errors"
	"market/internal/domain/repository"
	"market/internal/domain/service"
	"market/internal/errors"
	"market/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	store      repository.Store
	orders     usecase.Service[entity.Order]
	businesses usecase.Service[entity.Business]
	mail       *mailDispatcher
	pagination config.PaginationConfig
	logger     *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	Store  repository.Store
	Mailer service.Mailer
	Config *config.Config
	Logger *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		store:      params.Store,
		orders:     NewService(params.Store, "order", ordersOf, params.Config.Pagination, params.Logger, Hooks[entity.Order]{}),
		businesses: NewService(params.Store, "business", businessesOf, params.Config.Pagination, params.Logger, Hooks[entity.Business]{}),
		mail:       &mailDispatcher{mailer: params.Mailer, logger: params.Logger},
		pagination: params.Config.Pagination,
		logger:     params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create prices every line from the current item price, reserves stock for
// products and writes the order with its lines. Any failure leaves nothing behind.
func (srv *orderService) Create(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	customerID, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionOrderCreate)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, invalid("input is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	order := &entity.Order{
		Status:              entity.OrderStatusPending,
		CustomerID:          customerID,
		BusinessID:          input.BusinessID,
		DeliveryAddress:     input.DeliveryAddress,
		SpecialInstructions: input.SpecialInstructions,
	}
	itemNames := make(map[string]string, len(input.Lines))

	err = srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		business, err := tx.Businesses().FindByID(ctx, input.BusinessID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !business.IsActive) {
			return invalid("business %s is not available", input.BusinessID)
		}
		if err != nil {
			return err
		}

		lines := make([]*entity.OrderItem, 0, len(input.Lines))
		for _, in := range input.Lines {
			item, err := srv.reserve(ctx, tx, input.BusinessID, in)
			if err != nil {
				return err
			}
			itemNames[item.ID.String()] = item.Name
			lines = append(lines, &entity.OrderItem{ItemID: item.ID, Quantity: in.Quantity, Price: item.Price})
		}

		order.TotalAmount = entity.SumLines(lines)
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		for _, line := range lines {
			line.OrderID = order.ID
		}
		orderLines := NewService(tx, "order item", orderItemsOf, srv.pagination, srv.logger, Hooks[entity.OrderItem]{})
		if err := orderLines.BulkCreate(ctx, lines); err != nil {
			return err
		}
		order.Items = lines

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Order creation failed", slog.Any("businessID", input.BusinessID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Order created",
		slog.Any("orderID", order.ID),
		slog.Int("lines", len(order.Items)),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)
	srv.sendConfirmation(ctx, order, itemNames)

	return order, nil
}

// reserve loads the line's item and takes its quantity out of stock.
func (srv *orderService) reserve(ctx context.Context, tx repository.Store, businessID uuid.UUID, line usecase.OrderLineInput) (*entity.Item, error) {
	item, err := tx.Items().FindByID(ctx, line.ItemID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("item %s does not exist", line.ItemID)
	}
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, invalid("item %s is not available", item.ID)
	}
	if item.BusinessID != businessID {
		return nil, invalid("item %s is not sold by business %s", item.ID, businessID)
	}

	if item.TracksStock() {
		ok, err := tx.Items().DecrementStock(ctx, item.ID, line.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domainerrors.ErrInsufficientStock.WithDetails(item.Name)
		}
	}

	return item, nil
}

func (srv *orderService) sendConfirmation(ctx context.Context, order *entity.Order, itemNames map[string]string) {
	customer, err := srv.store.Users().FindByID(ctx, order.CustomerID)
	if err != nil {
		srv.log(ctx).Warn("Skipping order confirmation", slog.Any("orderID", order.ID), slog.Any("error", err))

		return
	}

	msg, err := orderConfirmationMessage(customer.Email, order, itemNames)
	if err != nil {
		srv.log(ctx).Warn("Failed to render order confirmation", slog.Any("error", err))

		return
	}
	srv.mail.send(ctx, msg, nil)
}

func (srv *orderService) loadLines(ctx context.Context, order *entity.Order) error {
	lines, err := srv.store.OrderItems().FilterBy(ctx, repository.Fields{"order_id": order.ID})
	if err != nil {
		return errors.Wrap(err, "failed to load order lines")
	}
	order.Items = lines

	return nil
}

// canSee reports whether the caller placed the order, owns its business or holds order:manage.
func (srv *orderService) canSee(ctx context.Context, principal deliverycontext.Principal, order *entity.Order) (bool, error) {
	callerID, _ := principal.CurrentUserID()
	if order.CustomerID == callerID || principal.HasPermission(entity.PermissionOrderManage) {
		return true, nil
	}

	business, err := srv.businesses.GetByID(ctx, order.BusinessID)
	if err != nil {
		return false, err
	}

	return business != nil && business.OwnerID == callerID, nil
}

func (srv *orderService) Get(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	if _, err := principal.RequireAuthenticated(); err != nil {
		return nil, err
	}

	order, err := srv.orders.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}

	allowed, err := srv.canSee(ctx, principal, order)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domainerrors.ErrAuthorizationDenied
	}

	if err := srv.loadLines(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (srv *orderService) ListMine(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.Order], error) {
	callerID, err := deliverycontext.PrincipalFromContext(ctx).RequireAuthenticated()
	if err != nil {
		return nil, err
	}

	all, err := srv.orders.FilterBy(ctx, repository.Fields{"customer_id": callerID})
	if err != nil {
		return nil, err
	}

	return paginate(all, page.Normalize(srv.pagination.DefaultLimit, srv.pagination.MaxLimit)), nil
}

func (srv *orderService) ListByBusiness(ctx context.Context, businessID uuid.UUID, page repository.Page) (*usecase.PageResult[entity.Order], error) {
	if _, err := loadManagedBusiness(ctx, srv.businesses, businessID); err != nil {
		return nil, err
	}

	all, err := srv.orders.FilterBy(ctx, repository.Fields{"business_id": businessID})
	if err != nil {
		return nil, err
	}

	return paginate(all, page.Normalize(srv.pagination.DefaultLimit, srv.pagination.MaxLimit)), nil
}

func (srv *orderService) ListAll(ctx context.Context, page repository.Page) (*usecase.PageResult[entity.Order], error) {
	if _, err := deliverycontext.PrincipalFromContext(ctx).RequirePermission(entity.PermissionOrderManage); err != nil {
		return nil, err
	}

	return srv.orders.List(ctx, page)
}

// UpdateStatus moves an order along its status machine. The business owner
// and order:manage may make any allowed move; the customer may only cancel
// a pending order. Cancelling restores the stock of product lines.
func (srv *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*entity.Order, error) {
	principal := deliverycontext.PrincipalFromContext(ctx)
	callerID, err := principal.RequireAuthenticated()
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("unknown order status %q", status)
	}

	var updated *entity.Order
	err = srv.store.Execute(ctx, func(ctx context.Context, tx repository.Store) error {
		order, err := tx.Orders().FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return domainerrors.ErrNotFound.WithDetails("order " + id.String())
		}
		if err != nil {
			return err
		}

		if err := srv.authorizeStatusChange(ctx, tx, principal, callerID, order, status); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return domainerrors.ErrInvalidStatusTransition.WithDetails(string(order.Status) + " -> " + string(status))
		}

		if status == entity.OrderStatusCancelled {
			if err := restock(ctx, tx, order.ID); err != nil {
				return err
			}
		}

		updated, err = tx.Orders().Update(ctx, id, repository.Fields{"status": status})

		return err
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Order status changed", slog.Any("orderID", id), slog.String("status", string(status)))

	if err := srv.loadLines(ctx, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

func (srv *orderService) authorizeStatusChange(
	ctx context.Context,
	tx repository.Store,
	principal deliverycontext.Principal,
	callerID uuid.UUID,
	order *entity.Order,
	status entity.OrderStatus,
) error {
	if principal.HasPermission(entity.PermissionOrderManage) {
		return nil
	}

	business, err := tx.Businesses().FindByID(ctx, order.BusinessID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if business != nil && business.OwnerID == callerID {
		return nil
	}

	if order.CustomerID == callerID && status == entity.OrderStatusCancelled && order.Status == entity.OrderStatusPending {
		return nil
	}

	return domainerrors.ErrAuthorizationDenied
}

// restock returns the quantities of an order's product lines to stock.
func restock(ctx context.Context, tx repository.Store, orderID uuid.UUID) error {
	lines, err := tx.OrderItems().FilterBy(ctx, repository.Fields{"order_id": orderID})
	if err != nil {
		return err
	}

	for _, line := range lines {
		item, err := tx.Items().FindByID(ctx, line.ItemID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !item.TracksStock() {
			continue
		}
		if _, err := tx.Items().DecrementStock(ctx, item.ID, -line.Quantity); err != nil {
			return err
		}
	}

	return nil
}
