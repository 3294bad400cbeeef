package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"live-commerce/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService() (AuthService, repository.UserRepository, repository.RefreshTokenRepository) {
	users := repository.NewUserRepository()
	tokens := repository.NewRefreshTokenRepository()
	return NewAuthService(users, tokens, "test-secret-key", 0), users, tokens
}

// bcrypt is slow; keep the number of generated accounts small
func authTestParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	return parameters
}

// Property: registration stores bcrypt hashes, never plaintext
func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(authTestParameters())

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, username string) bool {
			service, users, _ := newTestAuthService()
			ctx := context.Background()

			result, err := service.Register(ctx, username, email, password, "")
			if err != nil {
				t.Logf("FAIL: Registration failed: %v", err)
				return false
			}

			if result.User.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte(password)); err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			stored, err := users.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: Could not find stored user: %v", err)
				return false
			}

			return stored.PasswordHash == result.User.PasswordHash && stored.Role == "user"
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: access tokens carry the claims the console reads
func TestProperty_JWTTokensContainRequiredClaims(t *testing.T) {
	properties := gopter.NewProperties(authTestParameters())

	properties.Property("access tokens contain user id, email, role and name", prop.ForAll(
		func(email string, password string, username string, role string) bool {
			service, _, _ := newTestAuthService()
			ctx := context.Background()

			if _, err := service.Register(ctx, username, email, password, role); err != nil {
				t.Logf("FAIL: Registration failed: %v", err)
				return false
			}

			result, err := service.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: Login failed: %v", err)
				return false
			}

			claims, err := service.ValidateToken(result.AccessToken)
			if err != nil {
				t.Logf("FAIL: Token validation failed: %v", err)
				return false
			}

			if claims.UserID != result.User.ID.String() {
				t.Logf("FAIL: User ID claim mismatch. Expected %s, got %s", result.User.ID, claims.UserID)
				return false
			}
			if claims.Role != role || claims.Email != email || claims.Name != username {
				t.Logf("FAIL: Claims mismatch: %+v", claims)
				return false
			}
			if claims.ExpiresAt == nil || claims.IssuedAt == nil {
				t.Logf("FAIL: Token missing exp or iat")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
		gen.OneConstOf("user", "seller", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: logout revokes the refresh token
func TestProperty_LogoutInvalidatesRefreshToken(t *testing.T) {
	properties := gopter.NewProperties(authTestParameters())

	properties.Property("refresh works until logout", prop.ForAll(
		func(email string, password string) bool {
			service, _, tokens := newTestAuthService()
			ctx := context.Background()

			result, err := service.Register(ctx, "user", email, password, "seller")
			if err != nil {
				return false
			}

			if _, err := service.RefreshToken(ctx, result.RefreshToken); err != nil {
				t.Logf("FAIL: Refresh token should work before logout: %v", err)
				return false
			}

			if err := service.Logout(ctx, result.RefreshToken); err != nil {
				t.Logf("FAIL: Logout failed: %v", err)
				return false
			}

			if _, err := service.RefreshToken(ctx, result.RefreshToken); !errors.Is(err, ErrInvalidToken) {
				t.Logf("FAIL: Expected ErrInvalidToken, got: %v", err)
				return false
			}

			_, err = tokens.FindByToken(ctx, result.RefreshToken)
			return errors.Is(err, repository.ErrRefreshTokenRevoked)
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterRejectsDuplicatesAndBadRoles(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.Register(ctx, "asha", "asha@example.com", "password1", "user"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := service.Register(ctx, "asha", "asha@example.com", "password1", "user"); !errors.Is(err, repository.ErrUserAlreadyExists) {
		t.Errorf("Expected ErrUserAlreadyExists, got %v", err)
	}
	if _, err := service.Register(ctx, "root", "root@example.com", "password1", "root"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.Register(ctx, "asha", "asha@example.com", "password1", "user"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := service.Login(ctx, "asha@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Login(ctx, "nobody@example.com", "password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestValidateTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	service, _, _ := newTestAuthService()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "u",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, _ := expired.SignedString([]byte("test-secret-key"))
	if _, err := service.ValidateToken(signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u"}).SignedString([]byte("other-secret"))
	if _, err := service.ValidateToken(foreign); err == nil {
		t.Error("Expected token signed with another key to be rejected")
	}
}
