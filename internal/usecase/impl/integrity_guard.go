package impl

import (
	"context"

	"go.uber.org/fx"

	"devroots/internal/domain/repository"
	"devroots/internal/errors"
	"devroots/internal/usecase"
)

// integrityGuard checks content references before any write touches the store.
type integrityGuard struct {
	accountRepo  repository.AccountRepository
	categoryRepo repository.CategoryRepository
	blogRepo     repository.BlogRepository
	commentRepo  repository.CommentRepository
}

// IntegrityGuardParams holds dependencies for the integrity guard, injected by Fx.
type IntegrityGuardParams struct {
	fx.In

	AccountRepo  repository.AccountRepository
	CategoryRepo repository.CategoryRepository
	BlogRepo     repository.BlogRepository
	CommentRepo  repository.CommentRepository
}

// NewIntegrityGuard is the constructor for integrityGuard.
func NewIntegrityGuard(params IntegrityGuardParams) usecase.IntegrityGuard {
	return &integrityGuard{
		accountRepo:  params.AccountRepo,
		categoryRepo: params.CategoryRepo,
		blogRepo:     params.BlogRepo,
		commentRepo:  params.CommentRepo,
	}
}

// CheckBlogRefs reports whether both the owner and the category exist.
func (g *integrityGuard) CheckBlogRefs(ctx context.Context, username string, categoryID int64) (bool, error) {
	userExists, userErr := g.accountRepo.ExistsByUsername(ctx, username)
	categoryExists, categoryErr := g.categoryRepo.Exists(ctx, categoryID)
	if err := errors.Join(userErr, categoryErr); err != nil {
		return false, errors.Wrap(err, "failed to check blog references")
	}

	return userExists && categoryExists, nil
}

// CheckCommentRefs reports whether both the author and the blog exist.
func (g *integrityGuard) CheckCommentRefs(ctx context.Context, username string, blogID int64) (bool, error) {
	userExists, userErr := g.accountRepo.ExistsByUsername(ctx, username)
	blogExists, blogErr := g.blogRepo.Exists(ctx, blogID)
	if err := errors.Join(userErr, blogErr); err != nil {
		return false, errors.Wrap(err, "failed to check comment references")
	}

	return userExists && blogExists, nil
}

// CheckReplyRef reports whether the parent comment exists under the same blog.
func (g *integrityGuard) CheckReplyRef(ctx context.Context, blogID, parentCommentID int64) (bool, error) {
	parent, err := g.commentRepo.FindByID(ctx, parentCommentID)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to check parent comment")
	}

	return parent.BlogID == blogID, nil
}
