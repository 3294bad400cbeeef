// Package auth signs users in against the auth service and hands the
// resulting token to the session manager.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"live-commerce/internal/resource"
	"live-commerce/internal/session"

	"go.uber.org/zap"
)

// Credentials is the login payload
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the sign-up payload
type Registration struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user seller admin"`
}

// Result is the auth service response
type Result struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

type Client struct {
	baseURL   string
	transport *resource.Transport
	sessions  *session.Manager
	logger    *zap.Logger
}

// NewClient talks to the auth service at baseURL, e.g. http://localhost:8084.
func NewClient(baseURL string, transport *resource.Transport, sessions *session.Manager, logger *zap.Logger) *Client {
	if transport == nil {
		transport = resource.NewTransport(nil, nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		sessions:  sessions,
		logger:    logger,
	}
}

// Login signs in and establishes the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (session.Session, error) {
	const op = "login"

	res, err := c.post(ctx, op, "/api/auth/login", creds)
	if err != nil {
		return session.Session{}, err
	}
	if res.Token == "" {
		return session.Session{}, &resource.Error{
			Kind:    resource.KindMalformedResponse,
			Op:      op,
			Status:  http.StatusOK,
			Message: "login response did not include a token",
		}
	}
	return c.establish(ctx, res)
}

// Register creates an account. When the service answers with a token the
// session is established; otherwise the returned session has no token and
// the user must log in.
func (c *Client) Register(ctx context.Context, reg Registration) (session.Session, error) {
	if reg.Role == "" {
		reg.Role = session.RoleUser
	}

	res, err := c.post(ctx, "register", "/api/auth/register", reg)
	if err != nil {
		return session.Session{}, err
	}
	if res.Token == "" {
		return session.Session{Email: res.Email, Role: session.NormalizeRole(res.Role)}, nil
	}
	return c.establish(ctx, res)
}

// Logout forgets the session locally.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.Clear(ctx)
}

func (c *Client) post(ctx context.Context, op, path string, payload interface{}) (*Result, error) {
	if err := resource.ValidateStruct(payload); err != nil {
		return nil, resource.ValidationError(op, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, resource.ValidationError(op, err)
	}

	resp, err := c.transport.Do(ctx, resource.Request{
		Op:          op,
		Method:      http.MethodPost,
		URL:         c.baseURL + path,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
	})
	if err != nil {
		c.logger.Debug("Auth request failed", zap.String("op", op), zap.Error(err))
		return nil, err
	}

	var res Result
	if err := resource.DecodeJSON(op, resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) establish(ctx context.Context, res *Result) (session.Session, error) {
	return c.sessions.Establish(ctx, session.Session{
		Token:        res.Token,
		RefreshToken: res.RefreshToken,
		Email:        res.Email,
		Role:         res.Role,
	})
}
