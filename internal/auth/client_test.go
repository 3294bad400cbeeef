package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-commerce/internal/resource"
	"live-commerce/internal/session"
)

func newAuthServer(t *testing.T, h http.HandlerFunc) (*Client, *session.Manager) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sessions := session.NewManager(session.NewMemoryStore(), nil)
	return NewClient(srv.URL+"/", nil, sessions, nil), sessions
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLoginEstablishesSession(t *testing.T) {
	client, sessions := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, "/api/auth/login", r.URL.Path) {
			return
		}
		var creds Credentials
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds)) {
			return
		}
		assert.Equal(t, "seller@example.com", creds.Email)

		respond(w, http.StatusOK, Result{Token: "tok", RefreshToken: "ref", Email: creds.Email, Role: "SELLER"})
	})

	s, err := client.Login(context.Background(), Credentials{Email: "seller@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, session.RoleSeller, s.Role)

	current, ok := sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "tok", current.Token)
	assert.Equal(t, "ref", current.RefreshToken)

	require.NoError(t, client.Logout(context.Background()))
	_, ok = sessions.Current()
	assert.False(t, ok)
}

func TestLoginFailureKeepsNoSession(t *testing.T) {
	client, sessions := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	})

	_, err := client.Login(context.Background(), Credentials{Email: "a@example.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
	assert.Equal(t, 401, resource.StatusOf(err))

	_, ok := sessions.Current()
	assert.False(t, ok)
}

func TestLoginWithoutTokenIsMalformed(t *testing.T) {
	client, _ := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"email": "a@example.com"})
	})

	_, err := client.Login(context.Background(), Credentials{Email: "a@example.com", Password: "pw"})
	assert.Equal(t, resource.KindMalformedResponse, resource.KindOf(err))
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	client, _ := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Login(context.Background(), Credentials{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, resource.KindValidation, resource.KindOf(err))
}

func TestRegister(t *testing.T) {
	t.Run("defaults role and establishes when a token is returned", func(t *testing.T) {
		client, sessions := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
			var reg Registration
			if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&reg)) {
				return
			}
			assert.Equal(t, "/api/auth/register", r.URL.Path)
			assert.Equal(t, session.RoleUser, reg.Role)
			respond(w, http.StatusOK, Result{Token: "tok", Email: reg.Email, Role: reg.Role})
		})

		s, err := client.Register(context.Background(), Registration{Username: "asha", Email: "asha@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "tok", s.Token)

		_, ok := sessions.Current()
		assert.True(t, ok)
	})

	t.Run("no token means no session", func(t *testing.T) {
		client, sessions := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
			respond(w, http.StatusCreated, Result{Email: "asha@example.com", Role: "user"})
		})

		s, err := client.Register(context.Background(), Registration{Username: "asha", Email: "asha@example.com", Password: "secret1", Role: "seller"})
		require.NoError(t, err)
		assert.Empty(t, s.Token)
		assert.Equal(t, "asha@example.com", s.Email)

		_, ok := sessions.Current()
		assert.False(t, ok)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		client, _ := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := client.Register(context.Background(), Registration{Username: "x", Email: "x@example.com", Password: "secret1", Role: "root"})
		assert.Equal(t, resource.KindValidation, resource.KindOf(err))
	})
}
