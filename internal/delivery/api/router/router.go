// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"market/config"
	"market/internal/delivery/api/router/handler"
	"market/internal/delivery/graph"
	"market/internal/infra/metrics"
	"market/internal/infra/upload"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const graphqlPath = "/graphql"

type RouterParams struct {
	fx.In

	GraphHandler  *graph.Handler
	UploadHandler *handler.UploadHandler
	Metrics       *metrics.Metrics
	Config        *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	graphHandler  *graph.Handler
	uploadHandler *handler.UploadHandler
	metrics       *metrics.Metrics
	config        *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		graphHandler:  params.GraphHandler,
		uploadHandler: params.UploadHandler,
		metrics:       params.Metrics,
		config:        params.Config,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))

	e.POST(graphqlPath, r.graphHandler.Execute)
	e.GET(graphqlPath, r.graphHandler.Explorer)
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, graphqlPath)
	})

	e.POST("/uploads", r.uploadHandler.Upload)
	e.Static(upload.PublicPrefix, r.config.Upload.Dir)
}
