package service

import (
	"context"
	"time"
)

// Account event types.
const (
	EventAccountRegistered      = "account.registered"
	EventAccountProfileUpdated  = "account.profile_updated"
	EventAccountPasswordChanged = "account.password_changed"
)

// AccountEvent describes a completed change to an account.
type AccountEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	AccountID  string    `json:"account_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccountEvent publishes an account event for asynchronous consumers.
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
