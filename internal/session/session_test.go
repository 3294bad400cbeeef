package session

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, "console:session", ttl), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t, time.Hour)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx)
			assert.ErrorIs(t, err, ErrNoSession)

			in := &Session{Token: "abc", Email: "a@example.com", Role: RoleSeller}
			require.NoError(t, store.Save(ctx, in))

			out, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, in.Token, out.Token)
			assert.Equal(t, in.Email, out.Email)
			assert.Equal(t, in.Role, out.Role)

			require.NoError(t, store.Delete(ctx))
			_, err = store.Load(ctx)
			assert.ErrorIs(t, err, ErrNoSession)

			// deleting twice is fine
			assert.NoError(t, store.Delete(ctx))
		})
	}
}

func TestFileStoreIsOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(context.Background(), &Session{Token: "abc"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRedisStoreUsesShorterTokenExpiry(t *testing.T) {
	store, mr := newRedisStore(t, 24*time.Hour)

	s := &Session{Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(context.Background(), s))

	ttl := mr.TTL("console:session")
	assert.True(t, ttl > 0 && ttl <= time.Hour, "ttl = %v", ttl)

	mr.FastForward(2 * time.Hour)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerEstablishFillsFromClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"user_id":  "u-1",
		"email":    "seller@example.com",
		"role":     "SELLER",
		"username": "Meera",
		"exp":      exp.Unix(),
	})

	store := NewMemoryStore()
	m := NewManager(store, zap.NewNop())

	s, err := m.Establish(context.Background(), Session{Token: token, Email: "given@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "given@example.com", s.Email)
	assert.Equal(t, RoleSeller, s.Role)
	assert.Equal(t, "Meera", s.Name)
	assert.Equal(t, "u-1", s.UserID)
	assert.True(t, exp.Equal(s.ExpiresAt))

	current, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, token, current.Token)

	stored, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored.Token)
}

func TestManagerEstablishAcceptsOpaqueTokens(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)

	s, err := m.Establish(context.Background(), Session{Token: "opaque", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, s.Role)
	assert.True(t, s.ExpiresAt.IsZero())

	_, err = m.Establish(context.Background(), Session{})
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestManagerHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing session is not an error", func(t *testing.T) {
		m := NewManager(NewMemoryStore(), nil)
		require.NoError(t, m.Hydrate(ctx))
		_, ok := m.Current()
		assert.False(t, ok)
	})

	t.Run("stored session becomes current", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, &Session{Token: "abc", Role: RoleAdmin}))

		m := NewManager(store, nil)
		require.NoError(t, m.Hydrate(ctx))

		s, ok := m.Current()
		require.True(t, ok)
		assert.Equal(t, RoleAdmin, s.Role)
	})

	t.Run("expired session is discarded", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(ctx, &Session{Token: "abc", ExpiresAt: time.Now().Add(-time.Minute)}))

		m := NewManager(store, nil)
		require.NoError(t, m.Hydrate(ctx))

		_, ok := m.Current()
		assert.False(t, ok)
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("corrupt file is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		m := NewManager(NewFileStore(path), nil)
		assert.Error(t, m.Hydrate(ctx))
	})
}

func TestManagerAuthorizeAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, nil)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	m.Authorize(req)
	assert.Empty(t, req.Header.Get("Authorization"))

	_, err := m.Establish(ctx, Session{Token: "abc"})
	require.NoError(t, err)

	m.Authorize(req)
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))

	require.NoError(t, m.Clear(ctx))
	_, ok := m.Current()
	assert.False(t, ok)
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	req, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
	m.Authorize(req)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestManagerDropsSessionWhenItExpires(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	now := time.Now()
	m.now = func() time.Time { return now }

	_, err := m.Establish(context.Background(), Session{Token: "abc", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	_, ok := m.Current()
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = m.Current()
	assert.False(t, ok)
}
