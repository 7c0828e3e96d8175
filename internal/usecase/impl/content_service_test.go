package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "devroots/internal/domain/errors"
	"devroots/internal/domain/service"
	"devroots/internal/errors"
	"devroots/internal/usecase"
)

type contentFixtures struct {
	*testFixtures
	alice    service.Identity
	bob      service.Identity
	category *usecase.CategoryOutput
}

func newContentFixtures(t *testing.T) *contentFixtures {
	t.Helper()

	f := newTestFixtures(t)
	category, err := f.categories.CreateCategory(context.Background(), adminIdentity(), &usecase.CategoryInput{Title: "Golang"})
	require.NoError(t, err)

	return &contentFixtures{
		testFixtures: f,
		alice:        f.register(t, "alice", "a@x.com", "Pw1!"),
		bob:          f.register(t, "bob", "b@x.com", "Pw1!"),
		category:     category,
	}
}

func (f *contentFixtures) createBlog(t *testing.T, owner service.Identity) *usecase.BlogOutput {
	t.Helper()

	blog, err := f.blogs.CreateBlog(context.Background(), owner, &usecase.BlogInput{
		Title:      "Hello world",
		Content:    "First post",
		Username:   owner.Username,
		CategoryID: f.category.ID,
	})
	require.NoError(t, err)

	return blog
}

func (f *contentFixtures) createComment(t *testing.T, author service.Identity, blogID int64, parentID *int64) *usecase.CommentOutput {
	t.Helper()

	comment, err := f.comments.CreateComment(context.Background(), author, &usecase.CommentInput{
		Username:        author.Username,
		BlogID:          blogID,
		Content:         "Nice post",
		ParentCommentID: parentID,
	})
	require.NoError(t, err)

	return comment
}

func TestIntegrityGuard_CheckBlogRefs(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		username   string
		categoryID int64
		want       bool
	}{
		{name: "both exist", username: "alice", categoryID: f.category.ID, want: true},
		{name: "user exists case-insensitively", username: "ALICE", categoryID: f.category.ID, want: true},
		{name: "missing category", username: "alice", categoryID: 999, want: false},
		{name: "missing user", username: "ghost", categoryID: f.category.ID, want: false},
		{name: "both missing", username: "ghost", categoryID: 999, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.guard.CheckBlogRefs(ctx, tt.username, tt.categoryID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIntegrityGuard_CheckCommentRefs(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()
	blog := f.createBlog(t, f.alice)

	tests := []struct {
		name     string
		username string
		blogID   int64
		want     bool
	}{
		{name: "both exist", username: "bob", blogID: blog.ID, want: true},
		{name: "missing blog", username: "bob", blogID: 999, want: false},
		{name: "missing user", username: "ghost", blogID: blog.ID, want: false},
		{name: "both missing", username: "ghost", blogID: 999, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.guard.CheckCommentRefs(ctx, tt.username, tt.blogID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIntegrityGuard_CheckReplyRef(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()
	first := f.createBlog(t, f.alice)
	second := f.createBlog(t, f.alice)
	comment := f.createComment(t, f.bob, first.ID, nil)

	ok, err := f.guard.CheckReplyRef(ctx, first.ID, comment.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.guard.CheckReplyRef(ctx, second.ID, comment.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.guard.CheckReplyRef(ctx, first.ID, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryService(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()

	_, err := f.categories.CreateCategory(ctx, f.alice, &usecase.CategoryInput{Title: "Rust"})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	_, err = f.categories.CreateCategory(ctx, adminIdentity(), &usecase.CategoryInput{Title: "Go"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	updated, err := f.categories.UpdateCategory(ctx, adminIdentity(), f.category.ID, &usecase.CategoryInput{Title: "Go language"})
	require.NoError(t, err)
	assert.Equal(t, "Go language", updated.Title)

	got, err := f.categories.GetCategory(ctx, f.category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go language", got.Title)

	_, err = f.categories.UpdateCategory(ctx, adminIdentity(), 999, &usecase.CategoryInput{Title: "Nothing"})
	assert.ErrorIs(t, err, domainerrors.ErrCategoryNotFound)

	blog := f.createBlog(t, f.alice)
	f.createComment(t, f.bob, blog.ID, nil)

	assert.ErrorIs(t, f.categories.DeleteCategory(ctx, f.bob, f.category.ID), domainerrors.ErrForbidden)
	require.NoError(t, f.categories.DeleteCategory(ctx, adminIdentity(), f.category.ID))
	assert.ErrorIs(t, f.categories.DeleteCategory(ctx, adminIdentity(), f.category.ID), domainerrors.ErrCategoryNotFound)

	blogs, err := f.blogs.ListBlogs(ctx)
	require.NoError(t, err)
	assert.Empty(t, blogs)
	comments, err := f.comments.ListComments(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)

	categories, err := f.categories.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestBlogService_Create(t *testing.T) {
	t.Run("unknown category is rejected before any write", func(t *testing.T) {
		f := newContentFixtures(t)
		ctx := context.Background()

		_, err := f.blogs.CreateBlog(ctx, f.alice, &usecase.BlogInput{
			Title: "Hello world", Content: "First post", Username: "alice", CategoryID: 999,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

		blogs, err := f.blogs.ListBlogs(ctx)
		require.NoError(t, err)
		assert.Empty(t, blogs)
	})

	t.Run("unknown owner is rejected for admins", func(t *testing.T) {
		f := newContentFixtures(t)

		_, err := f.blogs.CreateBlog(context.Background(), adminIdentity(), &usecase.BlogInput{
			Title: "Hello world", Content: "First post", Username: "ghost", CategoryID: f.category.ID,
		})
		assert.ErrorIs(t, err, domainerrors.ErrIntegrity)
	})

	t.Run("creating for someone else is denied", func(t *testing.T) {
		f := newContentFixtures(t)

		_, err := f.blogs.CreateBlog(context.Background(), f.bob, &usecase.BlogInput{
			Title: "Hello world", Content: "First post", Username: "alice", CategoryID: f.category.ID,
		})
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation)
	})

	t.Run("owner spelling is canonicalized", func(t *testing.T) {
		f := newContentFixtures(t)

		blog, err := f.blogs.CreateBlog(context.Background(), f.alice, &usecase.BlogInput{
			Title: "Hello world", Content: "First post", Username: "ALICE", CategoryID: f.category.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", blog.Username)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newContentFixtures(t)

		_, err := f.blogs.CreateBlog(context.Background(), f.alice, &usecase.BlogInput{
			Title: "Hi", Content: "", Username: "alice",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Contains(t, appErr.Details(), "title must be at least 3 characters")
		assert.Contains(t, appErr.Details(), "categoryId is required")
	})
}

func TestBlogService_UpdateAndDelete(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()
	blog := f.createBlog(t, f.alice)
	f.createComment(t, f.bob, blog.ID, nil)

	input := &usecase.BlogInput{Title: "Edited", Content: "Changed", Username: "alice", CategoryID: f.category.ID}

	_, err := f.blogs.UpdateBlog(ctx, f.bob, blog.ID, input)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation)

	_, err = f.blogs.UpdateBlog(ctx, f.alice, blog.ID, &usecase.BlogInput{
		Title: "Edited", Content: "Changed", Username: "bob", CategoryID: f.category.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation, "owners cannot hand blogs to other users")

	updated, err := f.blogs.UpdateBlog(ctx, f.alice, blog.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)

	_, err = f.blogs.UpdateBlog(ctx, f.alice, 999, input)
	assert.ErrorIs(t, err, domainerrors.ErrBlogNotFound)

	got, err := f.blogs.GetBlog(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Content)
	assert.Len(t, got.Comments, 1)

	assert.ErrorIs(t, f.blogs.DeleteBlog(ctx, f.bob, blog.ID), domainerrors.ErrUnauthorizedMutation)
	require.NoError(t, f.blogs.DeleteBlog(ctx, adminIdentity(), blog.ID))

	_, err = f.blogs.GetBlog(ctx, blog.ID)
	assert.ErrorIs(t, err, domainerrors.ErrBlogNotFound)
	comments, err := f.comments.ListComments(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentService_Threads(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()
	blog := f.createBlog(t, f.alice)
	other := f.createBlog(t, f.alice)

	root := f.createComment(t, f.bob, blog.ID, nil)
	reply := f.createComment(t, f.alice, blog.ID, &root.ID)
	nested := f.createComment(t, f.bob, blog.ID, &reply.ID)
	second := f.createComment(t, f.alice, blog.ID, nil)

	tree, err := f.comments.BlogCommentTree(ctx, blog.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, root.ID, tree[0].ID)
	assert.Equal(t, second.ID, tree[1].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, nested.ID, tree[0].Replies[0].Replies[0].ID)

	flat, err := f.comments.ListBlogComments(ctx, blog.ID)
	require.NoError(t, err)
	assert.Len(t, flat, 4)

	_, err = f.comments.BlogCommentTree(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrBlogNotFound)

	_, err = f.comments.CreateComment(ctx, f.bob, &usecase.CommentInput{
		Username: "bob", BlogID: other.ID, Content: "wrong thread", ParentCommentID: &root.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

	_, err = f.comments.UpdateComment(ctx, f.bob, root.ID, &usecase.CommentInput{
		Username: "bob", BlogID: blog.ID, Content: "loop", ParentCommentID: &nested.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

	_, err = f.comments.UpdateComment(ctx, f.bob, root.ID, &usecase.CommentInput{
		Username: "bob", BlogID: blog.ID, Content: "self", ParentCommentID: &root.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

	_, err = f.comments.UpdateComment(ctx, f.bob, root.ID, &usecase.CommentInput{
		Username: "bob", BlogID: other.ID, Content: "moved thread",
	})
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)
	stayed, err := f.comments.GetComment(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.ID, stayed.BlogID)
	parent, err := f.comments.GetComment(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, stayed.BlogID, parent.BlogID)

	leaf := f.createComment(t, f.alice, blog.ID, nil)
	moved, err := f.comments.UpdateComment(ctx, f.alice, leaf.ID, &usecase.CommentInput{
		Username: "alice", BlogID: other.ID, Content: "moved leaf",
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.BlogID)

	require.NoError(t, f.comments.DeleteComment(ctx, f.bob, root.ID))
	flat, err = f.comments.ListBlogComments(ctx, blog.ID)
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.Equal(t, second.ID, flat[0].ID)
}

func TestCommentService_Mutations(t *testing.T) {
	f := newContentFixtures(t)
	ctx := context.Background()
	blog := f.createBlog(t, f.alice)
	comment := f.createComment(t, f.bob, blog.ID, nil)

	_, err := f.comments.CreateComment(ctx, f.bob, &usecase.CommentInput{Username: "alice", BlogID: blog.ID, Content: "impersonation"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation)

	_, err = f.comments.CreateComment(ctx, f.bob, &usecase.CommentInput{Username: "bob", BlogID: 999, Content: "nowhere"})
	assert.ErrorIs(t, err, domainerrors.ErrIntegrity)

	_, err = f.comments.CreateComment(ctx, f.bob, &usecase.CommentInput{Username: "bob", BlogID: blog.ID, Content: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = f.comments.UpdateComment(ctx, f.alice, comment.ID, &usecase.CommentInput{Username: "bob", BlogID: blog.ID, Content: "edited"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorizedMutation)

	updated, err := f.comments.UpdateComment(ctx, f.bob, comment.ID, &usecase.CommentInput{Username: "bob", BlogID: blog.ID, Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	got, err := f.comments.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	_, err = f.comments.GetComment(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrCommentNotFound)

	assert.ErrorIs(t, f.comments.DeleteComment(ctx, f.alice, comment.ID), domainerrors.ErrUnauthorizedMutation)
	require.NoError(t, f.comments.DeleteComment(ctx, adminIdentity(), comment.ID))
	assert.ErrorIs(t, f.comments.DeleteComment(ctx, adminIdentity(), comment.ID), domainerrors.ErrCommentNotFound)
}

func TestStaleWriteError(t *testing.T) {
	ctx := context.Background()
	notFound := domainerrors.ErrBlogNotFound.WithDetails("gone")

	err := staleWriteError(ctx, 1, func(context.Context, int64) (bool, error) { return false, nil }, notFound)
	assert.ErrorIs(t, err, domainerrors.ErrBlogNotFound)

	err = staleWriteError(ctx, 1, func(context.Context, int64) (bool, error) { return true, nil }, notFound)
	assert.ErrorIs(t, err, domainerrors.ErrConcurrentUpdate)

	probeErr := errors.New("connection reset")
	err = staleWriteError(ctx, 1, func(context.Context, int64) (bool, error) { return false, probeErr }, notFound)
	assert.ErrorIs(t, err, probeErr)
}
