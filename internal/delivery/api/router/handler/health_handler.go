// Package handler contains the HTTP handlers served next to the GraphQL endpoint.
package handler

import (
	"net/http"

	"market/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
