package repository

import (
	"context"
	"errors"

	"devroots/internal/domain/entity"
)

var (
	// ErrCategoryNotFound is returned when no category has the id.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrBlogNotFound is returned when no blog has the id.
	ErrBlogNotFound = errors.New("blog not found")
	// ErrCommentNotFound is returned when no comment has the id.
	ErrCommentNotFound = errors.New("comment not found")
)

// CategoryRepository persists categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Create(ctx context.Context, category *entity.Category) error
	// Update follows the same optimistic contract as AccountRepository.Update.
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}

// BlogRepository persists blogs.
type BlogRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Blog, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*entity.Blog, error)
	ListByUsername(ctx context.Context, username string) ([]*entity.Blog, error)
	Create(ctx context.Context, blog *entity.Blog) error
	Update(ctx context.Context, blog *entity.Blog) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Comment, error)
	List(ctx context.Context) ([]*entity.Comment, error)
	ListByBlog(ctx context.Context, blogID int64) ([]*entity.Comment, error)
	ListByUsername(ctx context.Context, username string) ([]*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id int64) error
}
