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

type commentService struct {
	logger      *slog.Logger
	accountRepo repository.AccountRepository
	blogRepo    repository.BlogRepository
	commentRepo repository.CommentRepository
	guard       usecase.IntegrityGuard
	now         func() time.Time
}

// CommentServiceParams holds dependencies for CommentService, injected by Fx.
type CommentServiceParams struct {
	fx.In

	Logger      *slog.Logger
	AccountRepo repository.AccountRepository
	BlogRepo    repository.BlogRepository
	CommentRepo repository.CommentRepository
	Guard       usecase.IntegrityGuard
}

// NewCommentService is the constructor for commentService.
func NewCommentService(params CommentServiceParams) usecase.CommentUsecase {
	return &commentService{
		logger:      params.Logger,
		accountRepo: params.AccountRepo,
		blogRepo:    params.BlogRepo,
		commentRepo: params.CommentRepo,
		guard:       params.Guard,
		now:         time.Now,
	}
}

func (srv *commentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *commentService) ListComments(ctx context.Context) ([]*usecase.CommentOutput, error) {
	comments, err := srv.commentRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list comments")
	}

	return toCommentOutputs(comments), nil
}

func (srv *commentService) GetComment(ctx context.Context, id int64) (*usecase.CommentOutput, error) {
	comment, err := srv.findComment(ctx, id)
	if err != nil {
		return nil, err
	}

	return toCommentOutput(comment), nil
}

// ListBlogComments returns the comments of a blog as a flat list.
func (srv *commentService) ListBlogComments(ctx context.Context, blogID int64) ([]*usecase.CommentOutput, error) {
	comments, err := srv.blogComments(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return toCommentOutputs(comments), nil
}

// BlogCommentTree returns the top-level comments of a blog with their replies nested.
func (srv *commentService) BlogCommentTree(ctx context.Context, blogID int64) ([]*usecase.CommentOutput, error) {
	comments, err := srv.blogComments(ctx, blogID)
	if err != nil {
		return nil, err
	}

	return toCommentTreeOutputs(entity.BuildCommentTree(comments)), nil
}

func (srv *commentService) CreateComment(
	ctx context.Context,
	requester service.Identity,
	input *usecase.CommentInput,
) (*usecase.CommentOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := srv.authorize(ctx, requester, input.Username); err != nil {
		return nil, err
	}

	author, err := srv.checkRefs(ctx, input)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	comment := &entity.Comment{
		ParentCommentID: input.ParentCommentID,
		Username:        author,
		BlogID:          input.BlogID,
		Content:         input.Content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := srv.commentRepo.Create(ctx, comment); err != nil {
		return nil, errors.Wrap(err, "failed to create comment")
	}

	srv.log(ctx).Info("Comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("blog_id", comment.BlogID))

	return toCommentOutput(comment), nil
}

func (srv *commentService) UpdateComment(
	ctx context.Context,
	requester service.Identity,
	id int64,
	input *usecase.CommentInput,
) (*usecase.CommentOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	comment, err := srv.findComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := srv.authorize(ctx, requester, comment.Username); err != nil {
		return nil, err
	}
	if entity.NormalizeName(input.Username) != entity.NormalizeName(comment.Username) {
		if err := srv.authorize(ctx, requester, input.Username); err != nil {
			return nil, err
		}
	}

	author, err := srv.checkRefs(ctx, input)
	if err != nil {
		return nil, err
	}
	if input.BlogID != comment.BlogID {
		replied, err := srv.hasReplies(ctx, comment)
		if err != nil {
			return nil, err
		}
		if replied {
			return nil, domainerrors.ErrIntegrity.WithDetails("A comment with replies cannot move to another blog")
		}
	}
	if input.ParentCommentID != nil {
		cyclic, err := srv.isAncestorOrSelf(ctx, id, *input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, domainerrors.ErrIntegrity.WithDetails("A comment cannot reply to itself or to one of its replies")
		}
	}

	comment.ParentCommentID = input.ParentCommentID
	comment.Username = author
	comment.BlogID = input.BlogID
	comment.Content = input.Content
	comment.UpdatedAt = srv.now()

	err = srv.commentRepo.Update(ctx, comment)
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return nil, staleWriteError(ctx, id, srv.commentExists, commentNotFound(id))
	case errors.Is(err, repository.ErrCommentNotFound):
		return nil, commentNotFound(id)
	case err != nil:
		return nil, errors.Wrap(err, "failed to update comment")
	}

	return toCommentOutput(comment), nil
}

// DeleteComment removes a comment together with its replies.
func (srv *commentService) DeleteComment(ctx context.Context, requester service.Identity, id int64) error {
	comment, err := srv.findComment(ctx, id)
	if err != nil {
		return err
	}
	if err := srv.authorize(ctx, requester, comment.Username); err != nil {
		return err
	}

	err = srv.commentRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return commentNotFound(id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to delete comment")
	}

	srv.log(ctx).Info("Comment deleted", slog.Int64("comment_id", id))

	return nil
}

func (srv *commentService) authorize(ctx context.Context, requester service.Identity, owner string) error {
	if err := guardMutation(requester, owner); err != nil {
		srv.log(ctx).Warn("Comment mutation denied",
			slog.String("requester", requester.Username),
			slog.String("owner", owner))

		return err
	}

	return nil
}

// checkRefs runs the integrity guard and returns the author's stored username.
func (srv *commentService) checkRefs(ctx context.Context, input *usecase.CommentInput) (string, error) {
	ok, err := srv.guard.CheckCommentRefs(ctx, input.Username, input.BlogID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domainerrors.ErrIntegrity.WithDetails("The user or blog does not exist")
	}

	if input.ParentCommentID != nil {
		ok, err := srv.guard.CheckReplyRef(ctx, input.BlogID, *input.ParentCommentID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domainerrors.ErrIntegrity.WithDetails("The parent comment does not exist on this blog")
		}
	}

	return canonicalUsername(ctx, srv.accountRepo, input.Username)
}

// hasReplies reports whether any comment on the same blog replies to comment.
func (srv *commentService) hasReplies(ctx context.Context, comment *entity.Comment) (bool, error) {
	comments, err := srv.commentRepo.ListByBlog(ctx, comment.BlogID)
	if err != nil {
		return false, errors.Wrap(err, "failed to list replies")
	}
	for _, other := range comments {
		if other.ParentCommentID != nil && *other.ParentCommentID == comment.ID {
			return true, nil
		}
	}

	return false, nil
}

// isAncestorOrSelf walks up from parentID and reports whether it reaches id.
func (srv *commentService) isAncestorOrSelf(ctx context.Context, id, parentID int64) (bool, error) {
	visited := make(map[int64]struct{})
	current := parentID
	for {
		if current == id {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			return false, nil
		}
		visited[current] = struct{}{}

		comment, err := srv.commentRepo.FindByID(ctx, current)
		if errors.Is(err, repository.ErrCommentNotFound) {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, "failed to walk reply chain")
		}
		if comment.ParentCommentID == nil {
			return false, nil
		}
		current = *comment.ParentCommentID
	}
}

func (srv *commentService) blogComments(ctx context.Context, blogID int64) ([]*entity.Comment, error) {
	exists, err := srv.blogRepo.Exists(ctx, blogID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check blog")
	}
	if !exists {
		return nil, blogNotFound(blogID)
	}

	comments, err := srv.commentRepo.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blog comments")
	}

	return comments, nil
}

func (srv *commentService) commentExists(ctx context.Context, id int64) (bool, error) {
	_, err := srv.commentRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (srv *commentService) findComment(ctx context.Context, id int64) (*entity.Comment, error) {
	comment, err := srv.commentRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return nil, commentNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find comment")
	}

	return comment, nil
}

func commentNotFound(id int64) error {
	return domainerrors.ErrCommentNotFound.WithDetails(fmt.Sprintf("The comment with id: %d has not been found", id))
}
