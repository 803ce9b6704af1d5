// Package auth provides the session provider that guards the dashboard.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
)

// User is a dashboard account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is an authenticated sign-in. AccessToken is only set on the value
// returned by SignIn.
type Session struct {
	ID          string    `json:"id"`
	User        User      `json:"user"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccessToken string    `json:"accessToken,omitempty"`
}

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Event is delivered to OnSessionChange subscribers.
type Event struct {
	Type      EventType
	SessionID string
	UserID    string
}

// Subscription is released with Unsubscribe. Calling it more than once is
// harmless.
type Subscription interface {
	Unsubscribe()
}

// Provider is the authentication service the Session Guard consults.
type Provider interface {
	// CurrentSession returns the live session for token, or nil when the
	// token is empty, invalid, expired or revoked.
	CurrentSession(ctx context.Context, token string) (*Session, error)
	OnSessionChange(fn func(Event)) Subscription
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, r Registration) (*User, error)
	SignOut(ctx context.Context, token string) error
}
