// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"devroots/internal/domain/service"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=256"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginInput accepts either the email or the username as the identifier.
type LoginInput struct {
	EmailUsername string `json:"emailUsername" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

// UpdateProfileInput replaces the profile fields of an account.
type UpdateProfileInput struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Email          string `json:"email" validate:"required,email,max=256"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url,max=2048"`
}

// UpdatePasswordInput carries the new password twice.
type UpdatePasswordInput struct {
	Password         string `json:"password" validate:"required"`
	RepeatedPassword string `json:"repeatedPassword" validate:"required"`
}

// --- Output DTOs ---

// AccountOutput is the public view of an account. It never carries the password hash.
type AccountOutput struct {
	ID             string           `json:"id"`
	Username       string           `json:"username"`
	Email          string           `json:"email"`
	ProfilePicture string           `json:"profilePicture"`
	Roles          []string         `json:"roles"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Blogs          []*BlogOutput    `json:"blogs,omitempty"`
	Comments       []*CommentOutput `json:"comments,omitempty"`
}

// LoginOutput returns the bearer token issued for a successful login.
type LoginOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
}

// AccountUsecase defines registration, login and self-service account operations.
type AccountUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AccountOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetAccount(ctx context.Context, username string) (*AccountOutput, error)
	ListAccounts(ctx context.Context) ([]*AccountOutput, error)
	// UpdateProfile and UpdatePassword require the requester to own the account or be an Admin.
	UpdateProfile(ctx context.Context, requester service.Identity, username string, input *UpdateProfileInput) (*AccountOutput, error)
	UpdatePassword(ctx context.Context, requester service.Identity, username string, input *UpdatePasswordInput) error
}

// BootstrapUsecase prepares state the service needs before it accepts traffic.
type BootstrapUsecase interface {
	// EnsureAdmin creates the configured administrator when no Admin account exists yet.
	EnsureAdmin(ctx context.Context) error
}
