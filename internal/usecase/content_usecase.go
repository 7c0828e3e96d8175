package usecase

import (
	"context"
	"time"

	"devroots/internal/domain/service"
)

// --- Input DTOs ---

// CategoryInput creates or replaces a category.
type CategoryInput struct {
	Title string `json:"title" validate:"required,min=3,max=50"`
}

// BlogInput creates or replaces a blog. Username names the owner.
type BlogInput struct {
	Title      string `json:"title" validate:"required,min=3,max=50"`
	Content    string `json:"content" validate:"required"`
	Username   string `json:"username" validate:"required"`
	CategoryID int64  `json:"categoryId" validate:"required,gt=0"`
}

// CommentInput creates or replaces a comment. A non-nil ParentCommentID makes it a reply.
type CommentInput struct {
	Username        string `json:"username" validate:"required"`
	BlogID          int64  `json:"blogId" validate:"required,gt=0"`
	Content         string `json:"content" validate:"required,min=2,max=255"`
	ParentCommentID *int64 `json:"parentCommentId,omitempty" validate:"omitempty,gt=0"`
}

// --- Output DTOs ---

// CategoryOutput is the public view of a category.
type CategoryOutput struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BlogOutput is the public view of a blog; Comments is filled on single-blog reads.
type BlogOutput struct {
	ID         int64            `json:"id"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Username   string           `json:"username"`
	CategoryID int64            `json:"categoryId"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Comments   []*CommentOutput `json:"comments,omitempty"`
}

// CommentOutput is the public view of a comment; Replies is only filled in tree reads.
type CommentOutput struct {
	ID              int64            `json:"id"`
	ParentCommentID *int64           `json:"parentCommentId,omitempty"`
	Username        string           `json:"username"`
	BlogID          int64            `json:"blogId"`
	Content         string           `json:"content"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Replies         []*CommentOutput `json:"replies,omitempty"`
}

// CategoryUsecase manages categories. Writes are restricted to Admins.
type CategoryUsecase interface {
	ListCategories(ctx context.Context) ([]*CategoryOutput, error)
	GetCategory(ctx context.Context, id int64) (*CategoryOutput, error)
	CreateCategory(ctx context.Context, requester service.Identity, input *CategoryInput) (*CategoryOutput, error)
	UpdateCategory(ctx context.Context, requester service.Identity, id int64, input *CategoryInput) (*CategoryOutput, error)
	DeleteCategory(ctx context.Context, requester service.Identity, id int64) error
}

// BlogUsecase manages blogs. Writes require ownership or the Admin role.
type BlogUsecase interface {
	ListBlogs(ctx context.Context) ([]*BlogOutput, error)
	GetBlog(ctx context.Context, id int64) (*BlogOutput, error)
	CreateBlog(ctx context.Context, requester service.Identity, input *BlogInput) (*BlogOutput, error)
	UpdateBlog(ctx context.Context, requester service.Identity, id int64, input *BlogInput) (*BlogOutput, error)
	DeleteBlog(ctx context.Context, requester service.Identity, id int64) error
}

// CommentUsecase manages comments and their reply trees.
type CommentUsecase interface {
	ListComments(ctx context.Context) ([]*CommentOutput, error)
	GetComment(ctx context.Context, id int64) (*CommentOutput, error)
	ListBlogComments(ctx context.Context, blogID int64) ([]*CommentOutput, error)
	BlogCommentTree(ctx context.Context, blogID int64) ([]*CommentOutput, error)
	CreateComment(ctx context.Context, requester service.Identity, input *CommentInput) (*CommentOutput, error)
	UpdateComment(ctx context.Context, requester service.Identity, id int64, input *CommentInput) (*CommentOutput, error)
	DeleteComment(ctx context.Context, requester service.Identity, id int64) error
}
