// Package model holds the GORM persistence models. They mirror the tables created by
// the embedded migrations and never leave the persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table.
type AccountModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username           string    `gorm:"type:varchar(50);not null;unique"`
	NormalizedUsername string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_accounts_normalized_username"`
	Email              string    `gorm:"type:varchar(256);not null"`
	NormalizedEmail    string    `gorm:"type:varchar(256);not null;uniqueIndex:ux_accounts_normalized_email"`
	PasswordHash       string    `gorm:"type:text;not null"`
	ProfilePictureURL  string    `gorm:"type:text;not null"`
	Version            int64     `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Roles []RoleModel `gorm:"many2many:account_roles;joinForeignKey:AccountID;joinReferences:RoleID"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// RoleModel mirrors the seeded 'roles' table.
type RoleModel struct {
	ID             string `gorm:"type:varchar(36);primaryKey"`
	Name           string `gorm:"type:varchar(50);not null"`
	NormalizedName string `gorm:"type:varchar(50);not null;uniqueIndex"`
}

// TableName explicitly sets the table name for GORM.
func (RoleModel) TableName() string {
	return "roles"
}

// AccountRoleModel mirrors the 'account_roles' membership table.
type AccountRoleModel struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    string    `gorm:"type:varchar(36);primaryKey"`
}

// TableName explicitly sets the table name for GORM.
func (AccountRoleModel) TableName() string {
	return "account_roles"
}
