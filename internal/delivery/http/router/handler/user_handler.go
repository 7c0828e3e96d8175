package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"devroots/internal/delivery/http/response"
	"devroots/internal/usecase"
)

// UserHandler holds dependencies for account handlers.
type UserHandler struct {
	uc usecase.AccountUsecase
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.AccountUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// ListUsers returns every account with its content.
func (h *UserHandler) ListUsers(c echo.Context) error {
	output, err := h.uc.ListAccounts(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// GetUser returns one account by username.
func (h *UserHandler) GetUser(c echo.Context) error {
	output, err := h.uc.GetAccount(c.Request().Context(), c.Param("username"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// UpdateProfile replaces the profile of the account in the path.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}

	var input *usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}

	output, err := h.uc.UpdateProfile(c.Request().Context(), identity, c.Param("username"), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Profile updated successfully")
}

// UpdatePassword replaces the password of the account in the path.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}

	var input *usecase.UpdatePasswordInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}

	if err := h.uc.UpdatePassword(c.Request().Context(), identity, c.Param("username"), input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password updated successfully")
}
