// Package session keeps the signed-in user's credentials for the console.
// A Manager is hydrated once at startup, established at login and cleared at
// logout; every request reads the token from it instead of from storage.
package session

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Roles issued by the auth service
const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
	RoleUser   = "user"
)

var (
	ErrNoSession    = errors.New("no session")
	ErrMissingToken = errors.New("session token is required")
)

// Session is the persisted login state. The token is sent as a bearer
// credential; the other fields are for display and route checks.
type Session struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"`
	Name         string    `json:"name,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the session has passed its expiry. Sessions
// without an expiry never expire.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Valid reports whether the session can authenticate requests.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && !s.Expired(now)
}

// DisplayName returns the best available name for the user.
func (s Session) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Email != "":
		return s.Email
	default:
		return "anonymous"
	}
}

// NormalizeRole lowercases a role and strips Spring's ROLE_ prefix.
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	return strings.TrimPrefix(role, "role_")
}

// Store persists a session between console runs.
type Store interface {
	// Load returns ErrNoSession when nothing is stored
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context) error
}
