package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	deliverycontext "market/internal/delivery/context"
	domainerrors "market/internal/domain/errors"
	"market/internal/infra/metrics"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/handler"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Request is the body of POST /graphql.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// HandlerParams holds dependencies for Handler, injected by Fx.
type HandlerParams struct {
	fx.In

	Resolver *Resolver
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Handler executes GraphQL requests and serves the interactive explorer.
type Handler struct {
	schema   graphql.Schema
	explorer http.Handler
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewHandler builds the schema once and returns the handler serving it.
func NewHandler(params HandlerParams) (*Handler, error) {
	schema, err := NewSchema(params.Resolver)
	if err != nil {
		return nil, err
	}

	return &Handler{
		schema: schema,
		explorer: handler.New(&handler.Config{
			Schema:     &schema,
			Pretty:     true,
			Playground: true,
		}),
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

// Execute runs one operation. Resolver failures are reported inside the
// response body with status 200; only a malformed request is an HTTP error.
func (h *Handler) Execute(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidation.WithDetails("request body must be a JSON GraphQL request")
	}
	if strings.TrimSpace(req.Query) == "" {
		return domainerrors.ErrValidation.WithDetails("query must not be empty")
	}

	return h.run(c, req)
}

// Explorer serves GraphQL Playground to browsers. A GET carrying a query may
// only run query operations; mutations have to be sent with POST.
func (h *Handler) Explorer(c echo.Context) error {
	query := c.QueryParam("query")
	if strings.TrimSpace(query) == "" {
		if !acceptsHTML(c.Request()) {
			c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)

			return echo.NewHTTPError(http.StatusMethodNotAllowed, "send GraphQL operations with POST")
		}
		h.explorer.ServeHTTP(c.Response(), c.Request())

		return nil
	}

	req := Request{Query: query, OperationName: c.QueryParam("operationName")}
	if raw := c.QueryParam("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			return domainerrors.ErrValidation.WithDetails("variables must be a JSON object")
		}
	}
	if !readOnly(query) {
		c.Response().Header().Set(echo.HeaderAllow, http.MethodPost)

		return echo.NewHTTPError(http.StatusMethodNotAllowed, "only query operations may be sent with GET")
	}

	return h.run(c, req)
}

func (h *Handler) run(c echo.Context, req Request) error {
	ctx := c.Request().Context()
	start := time.Now()
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	elapsed := time.Since(start)
	h.metrics.ObserveGraphQL(req.OperationName, result.HasErrors(), elapsed)

	if result.HasErrors() {
		deliverycontext.GetLoggerOrDefault(ctx, h.logger).Debug("GraphQL operation returned errors",
			slog.String("operation", req.OperationName),
			slog.Int("errors", len(result.Errors)),
			slog.Duration("elapsed", elapsed),
		)
	}

	return c.JSON(http.StatusOK, result)
}

// acceptsHTML mirrors the check graphql-go/handler uses before rendering Playground.
func acceptsHTML(r *http.Request) bool {
	accept := r.Header.Get(echo.HeaderAccept)

	return strings.Contains(accept, echo.MIMETextHTML) && !strings.Contains(accept, echo.MIMEApplicationJSON)
}

// readOnly reports whether every operation in the document is a query. A
// document that does not parse is left to graphql.Do to report.
func readOnly(query string) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return true
	}
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok && op.Operation != ast.OperationTypeQuery {
			return false
		}
	}

	return true
}
