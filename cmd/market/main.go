package main

import (
	"context"
	"log/slog"
	"os"

	"market/config"
	"market/internal/delivery"
	"market/internal/delivery/api"
	"market/internal/delivery/api/router/handler"
	"market/internal/delivery/graph"
	"market/internal/delivery/middleware"
	"market/internal/infra/auth"
	"market/internal/infra/email"
	logs "market/internal/infra/log"
	"market/internal/infra/metrics"
	"market/internal/infra/persistence/storage"
	"market/internal/infra/qrcode"
	"market/internal/infra/upload"
	"market/internal/usecase"
	"market/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		storage.New,
		metrics.New,
		upload.NewStorage,
		email.NewMailer,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			qrcode.NewQRCodeService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAccountService,
			impl.NewCategoryService,
			impl.NewBusinessService,
			impl.NewItemService,
			impl.NewOrderService,
			impl.NewReviewService,
			impl.NewTaggingService,
		),
	)
}

// newPrincipalMiddleware resolves bearer tokens through the account use case.
func newPrincipalMiddleware(accounts usecase.AccountUsecase, logger *slog.Logger) *middleware.PrincipalMiddleware {
	return middleware.NewPrincipalMiddleware(accounts, logger)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			newPrincipalMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			graph.NewResolver,
			graph.NewHandler,
			handler.NewUploadHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
