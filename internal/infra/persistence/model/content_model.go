package model

import "time"

// CategoryModel mirrors the 'categories' table.
type CategoryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Title     string `gorm:"type:varchar(50);not null"`
	Version   int64  `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}

// BlogModel mirrors the 'blogs' table. Username references accounts.username.
type BlogModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Title      string `gorm:"type:varchar(50);not null"`
	Content    string `gorm:"type:text;not null"`
	Username   string `gorm:"type:varchar(50);not null;index"`
	CategoryID int64  `gorm:"not null;index"`
	Version    int64  `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (BlogModel) TableName() string {
	return "blogs"
}

// CommentModel mirrors the 'comments' table. A nil ParentCommentID marks a top-level comment.
type CommentModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	ParentCommentID *int64 `gorm:"index"`
	Username        string `gorm:"type:varchar(50);not null;index"`
	BlogID          int64  `gorm:"not null;index"`
	Content         string `gorm:"type:varchar(255);not null"`
	Version         int64  `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (CommentModel) TableName() string {
	return "comments"
}
