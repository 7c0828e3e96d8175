package entity

import "time"

// Category groups blogs under a title.
type Category struct {
	ID        int64
	Title     string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Blog is a post owned by an account and filed under a category.
type Blog struct {
	ID         int64
	Title      string
	Content    string
	Username   string // Owner; references Account.Username.
	CategoryID int64
	Comments   []*Comment // Populated only by read paths that load comments.
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
