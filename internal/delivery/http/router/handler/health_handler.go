package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devroots/internal/delivery/http/response"
)

// HealthCheck reports that the process is serving requests.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
