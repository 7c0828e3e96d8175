// Package handler contains the HTTP handlers for the application.
package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	deliverycontext "devroots/internal/delivery/context"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/service"
)

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("%s must be a positive integer", name))
	}

	return id, nil
}

// requester returns the identity set by the auth middleware.
func requester(c echo.Context) (service.Identity, error) {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return service.Identity{}, domainerrors.ErrInvalidToken.WithDetails("Authentication is required")
	}

	return identity, nil
}
