package entity

import (
	"sort"
	"time"
)

// Comment is a remark on a blog, optionally replying to another comment of the same blog.
type Comment struct {
	ID              int64
	ParentCommentID *int64
	Username        string
	BlogID          int64
	Content         string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CommentNode is one comment together with its direct replies.
type CommentNode struct {
	*Comment
	Replies []*CommentNode
}

// BuildCommentTree rebuilds reply threads from a flat list by grouping on parent id.
// Comments whose parent is not in the list are treated as roots. Siblings keep
// creation order (ties broken by id).
func BuildCommentTree(comments []*Comment) []*CommentNode {
	nodes := make(map[int64]*CommentNode, len(comments))
	ordered := make([]*Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}

		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, c := range ordered {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
	}

	roots := make([]*CommentNode, 0)
	for _, c := range ordered {
		node := nodes[c.ID]
		if c.ParentCommentID != nil {
			if parent, ok := nodes[*c.ParentCommentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)

				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
