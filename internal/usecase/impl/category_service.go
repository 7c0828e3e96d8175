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

type categoryService struct {
	logger       *slog.Logger
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// CategoryServiceParams holds dependencies for CategoryService, injected by Fx.
type CategoryServiceParams struct {
	fx.In

	Logger       *slog.Logger
	CategoryRepo repository.CategoryRepository
}

// NewCategoryService is the constructor for categoryService.
func NewCategoryService(params CategoryServiceParams) usecase.CategoryUsecase {
	return &categoryService{
		logger:       params.Logger,
		categoryRepo: params.CategoryRepo,
		now:          time.Now,
	}
}

func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *categoryService) ListCategories(ctx context.Context) ([]*usecase.CategoryOutput, error) {
	categories, err := srv.categoryRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	outputs := make([]*usecase.CategoryOutput, 0, len(categories))
	for _, category := range categories {
		outputs = append(outputs, toCategoryOutput(category))
	}

	return outputs, nil
}

func (srv *categoryService) GetCategory(ctx context.Context, id int64) (*usecase.CategoryOutput, error) {
	category, err := srv.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	return toCategoryOutput(category), nil
}

func (srv *categoryService) CreateCategory(
	ctx context.Context,
	requester service.Identity,
	input *usecase.CategoryInput,
) (*usecase.CategoryOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	now := srv.now()
	category := &entity.Category{Title: input.Title, CreatedAt: now, UpdatedAt: now}
	if err := srv.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(err, "failed to create category")
	}

	srv.log(ctx).Info("Category created", slog.Int64("category_id", category.ID))

	return toCategoryOutput(category), nil
}

func (srv *categoryService) UpdateCategory(
	ctx context.Context,
	requester service.Identity,
	id int64,
	input *usecase.CategoryInput,
) (*usecase.CategoryOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	category, err := srv.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Title = input.Title
	category.UpdatedAt = srv.now()
	err = srv.categoryRepo.Update(ctx, category)
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return nil, staleWriteError(ctx, id, srv.categoryRepo.Exists, categoryNotFound(id))
	case errors.Is(err, repository.ErrCategoryNotFound):
		return nil, categoryNotFound(id)
	case err != nil:
		return nil, errors.Wrap(err, "failed to update category")
	}

	return toCategoryOutput(category), nil
}

// DeleteCategory removes a category together with its blogs and their comments.
func (srv *categoryService) DeleteCategory(ctx context.Context, requester service.Identity, id int64) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}

	err := srv.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return categoryNotFound(id)
	}
	if err != nil {
		return errors.Wrap(err, "failed to delete category")
	}

	srv.log(ctx).Info("Category deleted", slog.Int64("category_id", id))

	return nil
}

func (srv *categoryService) findCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, categoryNotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find category")
	}

	return category, nil
}

func categoryNotFound(id int64) error {
	return domainerrors.ErrCategoryNotFound.WithDetails(fmt.Sprintf("The category with id: %d has not been found", id))
}
