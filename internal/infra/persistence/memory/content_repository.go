package memory

import (
	"cmp"
	"context"
	"slices"

	"devroots/internal/domain/entity"
	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/repository"
	"devroots/internal/errors"
)

type categoryRepository struct {
	store *Store
}

// NewCategoryRepository creates a CategoryRepository over the store.
func NewCategoryRepository(store *Store) repository.CategoryRepository {
	return &categoryRepository{store: store}
}

func (r *categoryRepository) FindByID(_ context.Context, id int64) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	category, ok := r.store.categories[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrCategoryNotFound)
	}
	found := *category

	return &found, nil
}

func (r *categoryRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.categories[id]

	return ok, nil
}

func (r *categoryRepository) List(_ context.Context) ([]*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := make([]*entity.Category, 0, len(r.store.categories))
	for _, category := range r.store.categories {
		found := *category
		categories = append(categories, &found)
	}
	slices.SortFunc(categories, func(a, b *entity.Category) int { return cmp.Compare(a.ID, b.ID) })

	return categories, nil
}

func (r *categoryRepository) Create(_ context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextCategoryID++
	category.ID = r.store.nextCategoryID
	category.Version = 1
	stored := *category
	r.store.categories[category.ID] = &stored

	return nil
}

func (r *categoryRepository) Update(_ context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.categories[category.ID]
	if !ok || current.Version != category.Version {
		return errors.WithStack(repository.ErrStaleWrite)
	}

	category.Version++
	stored := *category
	r.store.categories[category.ID] = &stored

	return nil
}

// Delete removes the category with its blogs and their comments.
func (r *categoryRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[id]; !ok {
		return errors.WithStack(repository.ErrCategoryNotFound)
	}
	delete(r.store.categories, id)
	for blogID, blog := range r.store.blogs {
		if blog.CategoryID == id {
			r.store.deleteBlogLocked(blogID)
		}
	}

	return nil
}

type blogRepository struct {
	store *Store
}

// NewBlogRepository creates a BlogRepository over the store.
func NewBlogRepository(store *Store) repository.BlogRepository {
	return &blogRepository{store: store}
}

func (r *blogRepository) FindByID(_ context.Context, id int64) (*entity.Blog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	blog, ok := r.store.blogs[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrBlogNotFound)
	}
	found := *blog

	return &found, nil
}

func (r *blogRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.blogs[id]

	return ok, nil
}

func (r *blogRepository) List(_ context.Context) ([]*entity.Blog, error) {
	return r.filter(func(*entity.Blog) bool { return true }), nil
}

func (r *blogRepository) ListByUsername(_ context.Context, username string) ([]*entity.Blog, error) {
	normalized := entity.NormalizeName(username)

	return r.filter(func(b *entity.Blog) bool { return entity.NormalizeName(b.Username) == normalized }), nil
}

func (r *blogRepository) filter(keep func(*entity.Blog) bool) []*entity.Blog {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	blogs := make([]*entity.Blog, 0)
	for _, blog := range r.store.blogs {
		if keep(blog) {
			found := *blog
			blogs = append(blogs, &found)
		}
	}
	slices.SortFunc(blogs, func(a, b *entity.Blog) int { return cmp.Compare(a.ID, b.ID) })

	return blogs
}

func (r *blogRepository) Create(_ context.Context, blog *entity.Blog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkBlogRefsLocked(blog); err != nil {
		return err
	}

	r.store.nextBlogID++
	blog.ID = r.store.nextBlogID
	blog.Version = 1
	stored := *blog
	stored.Comments = nil
	r.store.blogs[blog.ID] = &stored

	return nil
}

func (r *blogRepository) Update(_ context.Context, blog *entity.Blog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.blogs[blog.ID]
	if !ok || current.Version != blog.Version {
		return errors.WithStack(repository.ErrStaleWrite)
	}
	if err := r.store.checkBlogRefsLocked(blog); err != nil {
		return err
	}

	blog.Version++
	stored := *blog
	stored.Comments = nil
	r.store.blogs[blog.ID] = &stored

	return nil
}

// Delete removes the blog with all of its comments.
func (r *blogRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.blogs[id]; !ok {
		return errors.WithStack(repository.ErrBlogNotFound)
	}
	r.store.deleteBlogLocked(id)

	return nil
}

type commentRepository struct {
	store *Store
}

// NewCommentRepository creates a CommentRepository over the store.
func NewCommentRepository(store *Store) repository.CommentRepository {
	return &commentRepository{store: store}
}

func (r *commentRepository) FindByID(_ context.Context, id int64) (*entity.Comment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	comment, ok := r.store.comments[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrCommentNotFound)
	}

	return copyComment(comment), nil
}

func (r *commentRepository) List(_ context.Context) ([]*entity.Comment, error) {
	return r.filter(func(*entity.Comment) bool { return true }), nil
}

func (r *commentRepository) ListByBlog(_ context.Context, blogID int64) ([]*entity.Comment, error) {
	return r.filter(func(c *entity.Comment) bool { return c.BlogID == blogID }), nil
}

func (r *commentRepository) ListByUsername(_ context.Context, username string) ([]*entity.Comment, error) {
	normalized := entity.NormalizeName(username)

	return r.filter(func(c *entity.Comment) bool { return entity.NormalizeName(c.Username) == normalized }), nil
}

func (r *commentRepository) filter(keep func(*entity.Comment) bool) []*entity.Comment {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	comments := make([]*entity.Comment, 0)
	for _, comment := range r.store.comments {
		if keep(comment) {
			comments = append(comments, copyComment(comment))
		}
	}
	slices.SortFunc(comments, func(a, b *entity.Comment) int { return cmp.Compare(a.ID, b.ID) })

	return comments
}

func (r *commentRepository) Create(_ context.Context, comment *entity.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.store.checkCommentRefsLocked(comment); err != nil {
		return err
	}

	r.store.nextCommentID++
	comment.ID = r.store.nextCommentID
	comment.Version = 1
	r.store.comments[comment.ID] = copyComment(comment)

	return nil
}

func (r *commentRepository) Update(_ context.Context, comment *entity.Comment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.comments[comment.ID]
	if !ok || current.Version != comment.Version {
		return errors.WithStack(repository.ErrStaleWrite)
	}
	if err := r.store.checkCommentRefsLocked(comment); err != nil {
		return err
	}

	comment.Version++
	r.store.comments[comment.ID] = copyComment(comment)

	return nil
}

// Delete removes the comment and every reply beneath it.
func (r *commentRepository) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.comments[id]; !ok {
		return errors.WithStack(repository.ErrCommentNotFound)
	}
	r.store.deleteCommentLocked(id)

	return nil
}

func copyComment(c *entity.Comment) *entity.Comment {
	cp := *c
	if c.ParentCommentID != nil {
		parent := *c.ParentCommentID
		cp.ParentCommentID = &parent
	}

	return &cp
}

// The foreign keys of the relational schema, enforced at write time.

func foreignKeyViolation() error {
	return errors.Wrap(domainerrors.ErrIntegrity, "foreign key violation")
}

func (s *Store) usernameExistsLocked(username string) bool {
	normalized := entity.NormalizeName(username)
	for _, account := range s.accounts {
		if account.NormalizedUsername == normalized {
			return true
		}
	}

	return false
}

func (s *Store) checkBlogRefsLocked(blog *entity.Blog) error {
	if _, ok := s.categories[blog.CategoryID]; !ok || !s.usernameExistsLocked(blog.Username) {
		return foreignKeyViolation()
	}

	return nil
}

func (s *Store) checkCommentRefsLocked(comment *entity.Comment) error {
	if _, ok := s.blogs[comment.BlogID]; !ok || !s.usernameExistsLocked(comment.Username) {
		return foreignKeyViolation()
	}
	if comment.ParentCommentID != nil {
		if _, ok := s.comments[*comment.ParentCommentID]; !ok {
			return foreignKeyViolation()
		}
	}

	return nil
}

func (s *Store) deleteBlogLocked(id int64) {
	delete(s.blogs, id)
	for commentID, comment := range s.comments {
		if comment.BlogID == id {
			delete(s.comments, commentID)
		}
	}
}

func (s *Store) deleteCommentLocked(id int64) {
	delete(s.comments, id)
	for replyID, reply := range s.comments {
		if reply.ParentCommentID != nil && *reply.ParentCommentID == id {
			s.deleteCommentLocked(replyID)
		}
	}
}
