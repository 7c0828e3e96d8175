package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"devroots/internal/delivery/http/response"
	"devroots/internal/usecase"
)

// BlogHandler serves the blog endpoints and the per-blog comment listings.
type BlogHandler struct {
	uc        usecase.BlogUsecase
	commentUC usecase.CommentUsecase
}

// NewBlogHandler is the constructor for BlogHandler, injected by Fx.
func NewBlogHandler(uc usecase.BlogUsecase, commentUC usecase.CommentUsecase) *BlogHandler {
	return &BlogHandler{uc: uc, commentUC: commentUC}
}

func (h *BlogHandler) List(c echo.Context) error {
	output, err := h.uc.ListBlogs(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

func (h *BlogHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	output, err := h.uc.GetBlog(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// Comments lists the comments of a blog without nesting.
func (h *BlogHandler) Comments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	output, err := h.commentUC.ListBlogComments(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

// CommentTree lists the top-level comments of a blog with replies nested.
func (h *BlogHandler) CommentTree(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	output, err := h.commentUC.BlogCommentTree(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "")
}

func (h *BlogHandler) Create(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}

	var input *usecase.BlogInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid blog input")
	}

	output, err := h.uc.CreateBlog(c.Request().Context(), identity, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Blog created successfully")
}

func (h *BlogHandler) Update(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var input *usecase.BlogInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid blog input")
	}

	output, err := h.uc.UpdateBlog(c.Request().Context(), identity, id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Blog updated successfully")
}

func (h *BlogHandler) Delete(c echo.Context) error {
	identity, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteBlog(c.Request().Context(), identity, id); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}
