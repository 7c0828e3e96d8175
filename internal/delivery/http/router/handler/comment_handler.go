package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"devroots/internal/delivery/http/response"
	"devroots/internal/usecase"
)

// CommentHandler serves the comment endpoints.
type CommentHandler struct {
	uc usecase.CommentUsecase
}

// NewCommentHandler is the constructor for CommentHandler, injected by Fx.
func NewCommentHandler(uc usecase.CommentUsecase) *CommentHandler {
	return &CommentHandler{uc: uc}
}

func (h *CommentHandler) List(c echo.Context) error {
	output, err := h.uc.ListComments(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

func (h *CommentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	output, err := h.uc.GetComment(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

func (h *CommentHandler) Create(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}

	var input *usecase.CommentInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid comment input")
	}

	output, err := h.uc.CreateComment(c.Request().Context(), identity, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Comment created successfully")
}

func (h *CommentHandler) Update(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var input *usecase.CommentInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid comment input")
	}

	output, err := h.uc.UpdateComment(c.Request().Context(), identity, id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Comment updated successfully")
}

func (h *CommentHandler) Delete(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteComment(c.Request().Context(), identity, id); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}
