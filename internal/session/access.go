package session

import (
	"net/url"
	"strings"
	"time"
)

// Decision is the outcome of a route check. Redirect is set when Allowed
// is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Rules map dashboard routes to the roles that may open them.
type Rules struct {
	// Public routes match exactly or as a path prefix ("/login/reset")
	Public []string
	// Roles lists the path prefixes each role may open. A path covered by
	// any role's prefixes is protected.
	Roles map[string][]string
	// Dashboards is where a role lands when it opens a protected path it
	// does not own
	Dashboards map[string]string
	Login      string
}

// DefaultRules are the dashboard's route rules.
func DefaultRules() Rules {
	return Rules{
		Public: []string{"/", "/login", "/register"},
		Roles: map[string][]string{
			RoleAdmin:  {"/admin"},
			RoleSeller: {"/seller"},
			RoleUser:   {"/user", "/products", "/profile", "/reservations"},
		},
		Dashboards: map[string]string{
			RoleAdmin:  "/admin/dashboard",
			RoleSeller: "/seller/dashboard",
			RoleUser:   "/user/products",
		},
		Login: "/login",
	}
}

// Check decides whether s may open path. A nil or expired session is
// sent to the login page with the requested path preserved.
func (r Rules) Check(path string, s *Session, now time.Time) Decision {
	if path == "" {
		path = "/"
	}

	if r.isPublic(path) {
		return Decision{Allowed: true}
	}

	if s == nil || !s.Valid(now) {
		return Decision{Redirect: r.Login + "?" + url.Values{"redirect": {path}}.Encode()}
	}

	if !r.isProtected(path) {
		return Decision{Allowed: true}
	}

	role := NormalizeRole(s.Role)
	if hasPrefix(path, r.Roles[role]) {
		return Decision{Allowed: true}
	}

	if dashboard, ok := r.Dashboards[role]; ok {
		return Decision{Redirect: dashboard}
	}
	return Decision{Redirect: r.Login}
}

func (r Rules) isPublic(path string) bool {
	for _, route := range r.Public {
		if path == route || strings.HasPrefix(path, route+"/") {
			return true
		}
	}
	return false
}

func (r Rules) isProtected(path string) bool {
	for _, prefixes := range r.Roles {
		if hasPrefix(path, prefixes) {
			return true
		}
	}
	return false
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
