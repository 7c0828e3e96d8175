package postgres

import (
	"context"

	"gorm.io/gorm"

	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
	"devroots/internal/infra/persistence/model"
)

// categoryRepository implements repository.CategoryRepository using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository is the constructor for categoryRepository.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	var categoryM model.CategoryModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&categoryM).Error; err != nil {
		return nil, notFoundOr(err, repository.ErrCategoryNotFound, "failed to find category")
	}

	return toCategoryDomain(&categoryM), nil
}

func (repo *categoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, repo.db, &model.CategoryModel{}, id)
}

func (repo *categoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	var categoryMs []model.CategoryModel
	if err := repo.db.WithContext(ctx).Order("id").Find(&categoryMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list categories")
	}

	categories := make([]*entity.Category, 0, len(categoryMs))
	for i := range categoryMs {
		categories = append(categories, toCategoryDomain(&categoryMs[i]))
	}

	return categories, nil
}

func (repo *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	categoryM := &model.CategoryModel{
		Title:     category.Title,
		Version:   1,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(categoryM).Error; err != nil {
		return translateContentWriteError(err, "failed to create category")
	}
	category.ID = categoryM.ID
	category.Version = categoryM.Version

	return nil
}

func (repo *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return updateVersioned(ctx, repo.db, &model.CategoryModel{}, category.ID, &category.Version, map[string]any{
		"title":      category.Title,
		"updated_at": category.UpdatedAt,
	}, "failed to update category")
}

func (repo *categoryRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, repo.db, &model.CategoryModel{}, id, repository.ErrCategoryNotFound, "failed to delete category")
}

// blogRepository implements repository.BlogRepository using GORM.
type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository is the constructor for blogRepository.
func NewBlogRepository(db *gorm.DB) repository.BlogRepository {
	return &blogRepository{db: db}
}

func (repo *blogRepository) FindByID(ctx context.Context, id int64) (*entity.Blog, error) {
	var blogM model.BlogModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&blogM).Error; err != nil {
		return nil, notFoundOr(err, repository.ErrBlogNotFound, "failed to find blog")
	}

	return toBlogDomain(&blogM), nil
}

func (repo *blogRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, repo.db, &model.BlogModel{}, id)
}

func (repo *blogRepository) List(ctx context.Context) ([]*entity.Blog, error) {
	return repo.find(repo.db.WithContext(ctx))
}

func (repo *blogRepository) ListByUsername(ctx context.Context, username string) ([]*entity.Blog, error) {
	return repo.find(repo.db.WithContext(ctx).Where("UPPER(username) = ?", entity.NormalizeName(username)))
}

func (repo *blogRepository) find(query *gorm.DB) ([]*entity.Blog, error) {
	var blogMs []model.BlogModel
	if err := query.Order("id").Find(&blogMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list blogs")
	}

	blogs := make([]*entity.Blog, 0, len(blogMs))
	for i := range blogMs {
		blogs = append(blogs, toBlogDomain(&blogMs[i]))
	}

	return blogs, nil
}

func (repo *blogRepository) Create(ctx context.Context, blog *entity.Blog) error {
	blogM := &model.BlogModel{
		Title:      blog.Title,
		Content:    blog.Content,
		Username:   blog.Username,
		CategoryID: blog.CategoryID,
		Version:    1,
		CreatedAt:  blog.CreatedAt,
		UpdatedAt:  blog.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(blogM).Error; err != nil {
		return translateContentWriteError(err, "failed to create blog")
	}
	blog.ID = blogM.ID
	blog.Version = blogM.Version

	return nil
}

func (repo *blogRepository) Update(ctx context.Context, blog *entity.Blog) error {
	return updateVersioned(ctx, repo.db, &model.BlogModel{}, blog.ID, &blog.Version, map[string]any{
		"title":       blog.Title,
		"content":     blog.Content,
		"username":    blog.Username,
		"category_id": blog.CategoryID,
		"updated_at":  blog.UpdatedAt,
	}, "failed to update blog")
}

func (repo *blogRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, repo.db, &model.BlogModel{}, id, repository.ErrBlogNotFound, "failed to delete blog")
}

// commentRepository implements repository.CommentRepository using GORM.
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository is the constructor for commentRepository.
func NewCommentRepository(db *gorm.DB) repository.CommentRepository {
	return &commentRepository{db: db}
}

func (repo *commentRepository) FindByID(ctx context.Context, id int64) (*entity.Comment, error) {
	var commentM model.CommentModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&commentM).Error; err != nil {
		return nil, notFoundOr(err, repository.ErrCommentNotFound, "failed to find comment")
	}

	return toCommentDomain(&commentM), nil
}

func (repo *commentRepository) List(ctx context.Context) ([]*entity.Comment, error) {
	return repo.find(repo.db.WithContext(ctx))
}

func (repo *commentRepository) ListByBlog(ctx context.Context, blogID int64) ([]*entity.Comment, error) {
	return repo.find(repo.db.WithContext(ctx).Where("blog_id = ?", blogID))
}

func (repo *commentRepository) ListByUsername(ctx context.Context, username string) ([]*entity.Comment, error) {
	return repo.find(repo.db.WithContext(ctx).Where("UPPER(username) = ?", entity.NormalizeName(username)))
}

func (repo *commentRepository) find(query *gorm.DB) ([]*entity.Comment, error) {
	var commentMs []model.CommentModel
	if err := query.Order("id").Find(&commentMs).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list comments")
	}

	comments := make([]*entity.Comment, 0, len(commentMs))
	for i := range commentMs {
		comments = append(comments, toCommentDomain(&commentMs[i]))
	}

	return comments, nil
}

func (repo *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentM := &model.CommentModel{
		ParentCommentID: comment.ParentCommentID,
		Username:        comment.Username,
		BlogID:          comment.BlogID,
		Content:         comment.Content,
		Version:         1,
		CreatedAt:       comment.CreatedAt,
		UpdatedAt:       comment.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(commentM).Error; err != nil {
		return translateContentWriteError(err, "failed to create comment")
	}
	comment.ID = commentM.ID
	comment.Version = commentM.Version

	return nil
}

func (repo *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	return updateVersioned(ctx, repo.db, &model.CommentModel{}, comment.ID, &comment.Version, map[string]any{
		"parent_comment_id": comment.ParentCommentID,
		"username":          comment.Username,
		"blog_id":           comment.BlogID,
		"content":           comment.Content,
		"updated_at":        comment.UpdatedAt,
	}, "failed to update comment")
}

func (repo *commentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, repo.db, &model.CommentModel{}, id, repository.ErrCommentNotFound, "failed to delete comment")
}

// updateVersioned applies columns only while the stored version equals *version,
// then advances *version to match the row.
func updateVersioned(ctx context.Context, db *gorm.DB, m any, id int64, version *int64, columns map[string]any, details string) error {
	columns["version"] = gorm.Expr("version + 1")

	result := db.WithContext(ctx).Model(m).Where("id = ? AND version = ?", id, *version).Updates(columns)
	if result.Error != nil {
		return translateContentWriteError(result.Error, details)
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(repository.ErrStaleWrite)
	}
	*version++

	return nil
}

func existsByID(ctx context.Context, db *gorm.DB, m any, id int64) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(m).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "failed to check existence")
	}

	return count > 0, nil
}

func deleteByID(ctx context.Context, db *gorm.DB, m any, id int64, notFound error, details string) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(m)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, details)
	}
	if result.RowsAffected == 0 {
		return errors.WithStack(notFound)
	}

	return nil
}

func notFoundOr(err, notFound error, details string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.WithStack(notFound)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

// translateContentWriteError turns a foreign key failure into an integrity error.
// The use cases check references first, so this only fires when a referenced row vanishes mid-request.
func translateContentWriteError(err error, details string) error {
	if isForeignKeyConstraintViolation(err) {
		return errors.Wrap(domainerrors.ErrIntegrity, details)
	}
	if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WithDetails(details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func toCategoryDomain(m *model.CategoryModel) *entity.Category {
	return &entity.Category{
		ID:        m.ID,
		Title:     m.Title,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toBlogDomain(m *model.BlogModel) *entity.Blog {
	return &entity.Blog{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		Username:   m.Username,
		CategoryID: m.CategoryID,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toCommentDomain(m *model.CommentModel) *entity.Comment {
	return &entity.Comment{
		ID:              m.ID,
		ParentCommentID: m.ParentCommentID,
		Username:        m.Username,
		BlogID:          m.BlogID,
		Content:         m.Content,
		Version:         m.Version,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
