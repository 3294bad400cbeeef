package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims are the token claims the console cares about
type Claims struct {
	UserID    string
	Email     string
	Role      string
	Name      string
	ExpiresAt time.Time
}

// DecodeClaims reads the claims of a JWT without verifying its signature.
// The console never holds the signing key; the server verifies every
// request, so claims are only used to fill in display fields.
func DecodeClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	c := Claims{
		UserID: stringClaim(claims, "user_id", "sub"),
		Email:  stringClaim(claims, "email"),
		Role:   NormalizeRole(stringClaim(claims, "role")),
		Name:   stringClaim(claims, "name", "username", "email"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}

func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Manager is the single owner of the current session. It is safe for
// concurrent use.
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *Session
}

func NewManager(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// Hydrate loads the persisted session. A missing or expired session is
// not an error; an expired one is removed from the store.
func (m *Manager) Hydrate(ctx context.Context) error {
	s, err := m.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		m.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}

	if !s.Valid(m.now()) {
		m.logger.Debug("Discarding expired session", zap.String("email", s.Email))
		m.set(nil)
		if err := m.store.Delete(ctx); err != nil {
			m.logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return nil
	}

	m.set(s)
	m.logger.Debug("Session hydrated", zap.String("email", s.Email), zap.String("role", s.Role))
	return nil
}

// Establish records a fresh login. Fields missing from s are filled from
// the token's claims; fields present in s win.
func (m *Manager) Establish(ctx context.Context, s Session) (Session, error) {
	if strings.TrimSpace(s.Token) == "" {
		return Session{}, ErrMissingToken
	}

	if claims, err := DecodeClaims(s.Token); err != nil {
		m.logger.Debug("Token claims unavailable", zap.Error(err))
	} else {
		s.UserID = firstNonEmpty(s.UserID, claims.UserID)
		s.Email = firstNonEmpty(s.Email, claims.Email)
		s.Role = firstNonEmpty(s.Role, claims.Role)
		s.Name = firstNonEmpty(s.Name, claims.Name)
		if s.ExpiresAt.IsZero() {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	s.Role = NormalizeRole(s.Role)

	if err := m.store.Save(ctx, &s); err != nil {
		return Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	m.set(&s)
	m.logger.Info("Session established", zap.String("email", s.Email), zap.String("role", s.Role))
	return s, nil
}

// Current returns the active session, if any.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil || !m.current.Valid(m.now()) {
		return Session{}, false
	}
	return *m.current, true
}

// Clear forgets the session in memory and in the store.
func (m *Manager) Clear(ctx context.Context) error {
	m.set(nil)
	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.logger.Info("Session cleared")
	return nil
}

// Authorize adds the bearer token of the active session to req.
func (m *Manager) Authorize(req *http.Request) {
	if s, ok := m.Current(); ok {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s == nil {
		m.current = nil
		return
	}
	cp := *s
	m.current = &cp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
