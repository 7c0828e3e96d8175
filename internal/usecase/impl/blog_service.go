package impl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/fx"

	deliverycontext "devroots/internal/delivery/context"
	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
	"devroots/internal/usecase"
)

type blogService struct {
	logger      *slog.Logger
	accountRepo repository.AccountRepository
	blogRepo    repository.BlogRepository
	commentRepo repository.CommentRepository
	guard       usecase.IntegrityGuard
	now         func() time.Time
}

// BlogServiceParams holds dependencies for BlogService, injected by Fx.
type BlogServiceParams struct {
	fx.In

	Logger      *slog.Logger
	AccountRepo repository.AccountRepository
	BlogRepo    repository.BlogRepository
	CommentRepo repository.CommentRepository
	Guard       usecase.IntegrityGuard
}

// NewBlogService is the constructor for blogService.
func NewBlogService(params BlogServiceParams) usecase.BlogUsecase {
	return &blogService{
		logger:      params.Logger,
		accountRepo: params.AccountRepo,
		blogRepo:    params.BlogRepo,
		commentRepo: params.CommentRepo,
		guard:       params.Guard,
		now:         time.Now,
	}
}

func (srv *blogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *blogService) ListBlogs(ctx context.Context) ([]*usecase.BlogOutput, error) {
	blogs, err := srv.blogRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blogs")
	}

	return toBlogOutputs(blogs), nil
}

// GetBlog returns a blog with its comments as a flat list.
func (srv *blogService) GetBlog(ctx context.Context, id int64) (*usecase.BlogOutput, error) {
	blog, err := srv.findBlog(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := srv.commentRepo.ListByBlog(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blog comments")
	}
	blog.Comments = comments

	return toBlogOutput(blog), nil
}

func (srv *blogService) CreateBlog(
	ctx context.Context,
	requester service.Identity,
	input *usecase.BlogInput,
) (*usecase.BlogOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := srv.authorize(ctx, requester, input.Username); err != nil {
		return nil, err
	}

	owner, err := srv.checkRefs(ctx, input)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	blog := &entity.Blog{
		Title:      input.Title,
		Content:    input.Content,
		Username:   owner,
		CategoryID: input.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := srv.blogRepo.Create(ctx, blog); err != nil {
		return nil, errors.Wrap(err, "failed to create blog")
	}

	srv.log(ctx).Info("Blog created",
		slog.Int64("blog_id", blog.ID),
		slog.String("username", blog.Username))

	return toBlogOutput(blog), nil
}

func (srv *blogService) UpdateBlog(
	ctx context.Context,
	requester service.Identity,
	id int64,
	input *usecase.BlogInput,
) (*usecase.BlogOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	blog, err := srv.findBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := srv.authorize(ctx, requester, blog.Username); err != nil {
		return nil, err
	}
	if entity.NormalizeName(input.Username) != entity.NormalizeName(blog.Username) {
		if err := srv.authorize(ctx, requester, input.Username); err != nil {
			return nil, err
		}
	}

	owner, err := srv.checkRefs(ctx, input)
	if err != nil {
		return nil, err
	}

	blog.Title = input.Title
	blog.Content = input.Content
	blog.Username = owner
	blog.CategoryID = input.CategoryID
	blog.UpdatedAt = srv.now()

	err = srv.blogRepo.Update(ctx, blog)
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return nil, staleWriteError(ctx, id, srv.blogRepo.Exists, blogNotFound(id))
	case errors.Is(err, repository.ErrBlogNotFound):
		return nil, blogNotFound(id)
	case err != nil:
		return nil, errors.Wrap(err, "failed to update blog")
	}

	return toBlogOutput(blog), nil
}

// DeleteBlog removes a blog together with its comments.
func (srv *blogService) DeleteBlog(ctx context.Context, requester service.Identity, id int64) error {
	blog, err := srv.findBlog(ctx, id)
	if err != nil {
		return err
	}
	if err := srv.authorize(ctx, requester, blog.Username); err != nil {
		return err
	}

	err = srv.blogRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return blogNotFound(id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to delete blog")
	}

	srv.log(ctx).Info("Blog deleted", slog.Int64("blog_id", id))

	return nil
}

func (srv *blogService) authorize(ctx context.Context, requester service.Identity, owner string) error {
	if err := guardMutation(requester, owner); err != nil {
		srv.log(ctx).Warn("Blog mutation denied",
			slog.String("requester", requester.Username),
			slog.String("owner", owner))

		return err
	}

	return nil
}

// checkRefs runs the integrity guard and returns the owner's stored username.
func (srv *blogService) checkRefs(ctx context.Context, input *usecase.BlogInput) (string, error) {
	ok, err := srv.guard.CheckBlogRefs(ctx, input.Username, input.CategoryID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domainerrors.ErrIntegrity.WithDetails("The user or category does not exist")
	}

	return canonicalUsername(ctx, srv.accountRepo, input.Username)
}

func (srv *blogService) findBlog(ctx context.Context, id int64) (*entity.Blog, error) {
	blog, err := srv.blogRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrBlogNotFound) {
		return nil, blogNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find blog")
	}

	return blog, nil
}

func blogNotFound(id int64) error {
	return domainerrors.ErrBlogNotFound.WithDetails(fmt.Sprintf("The blog with id: %d has not been found", id))
}
