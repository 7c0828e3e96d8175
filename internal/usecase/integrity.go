package usecase

import "context"

// IntegrityGuard verifies that the rows a content write points at exist.
// Every probe runs to completion; a false result means at least one reference is missing.
type IntegrityGuard interface {
	CheckBlogRefs(ctx context.Context, username string, categoryID int64) (bool, error)
	CheckCommentRefs(ctx context.Context, username string, blogID int64) (bool, error)
	// CheckReplyRef reports whether parentCommentID exists and belongs to blogID.
	CheckReplyRef(ctx context.Context, blogID, parentCommentID int64) (bool, error)
}
