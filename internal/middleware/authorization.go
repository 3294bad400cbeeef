package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// RequireRole lets the request through only when the authenticated caller
// holds one of roles. Roles compare case-insensitively and a "ROLE_" prefix
// on the token's role is ignored.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[canonicalRole(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				logger.Warn("Role check without authenticated caller", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if _, ok := allowed[canonicalRole(principal.Role)]; !ok {
				logger.Warn("User role not authorized",
					zap.String("role", principal.Role),
					zap.Strings("allowed_roles", roles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func canonicalRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	return strings.TrimPrefix(role, "role_")
}
