package rbac

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/shared"
)

// Middleware wires authorization gates for HTTP handlers. Gates assume
// authentication already ran and resolved a principal into the request
// context; a missing principal is treated as an authentication failure, not
// an authorization one.
type Middleware struct {
	Logger *slog.Logger
}

// RequirePermission gates a route behind a single permission.
func (m Middleware) RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if !UserHasPermission(p, perm) {
				m.deny(w, r, p, perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny gates a route behind at least one of the given permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if !UserHasAnyPermission(p, perms) {
				m.deny(w, r, p, strings.Join(perms, "|"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAll gates a route behind every one of the given permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if !UserHasAllPermissions(p, perms) {
				m.deny(w, r, p, strings.Join(perms, "+"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireMinRole gates a route behind a minimum role rank.
func (m Middleware) RequireMinRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if !IsRoleHigherOrEqual(p.Role, role) {
				m.deny(w, r, p, "role>="+role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route behind an exact role allow-list.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if _, member := allowed[p.Role]; !member {
				m.deny(w, r, p, "role:"+strings.Join(roles, "|"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnerResolver extracts the owning user's ID for the requested resource,
// typically from a URL parameter.
type OwnerResolver func(r *http.Request) string

// RequireOwnershipOr allows the request when the principal owns the resource
// or holds the fallback permission. Used by self-service endpoints such as
// profile edits.
func (m Middleware) RequireOwnershipOr(perm string, owner OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := m.principal(w, r)
			if !ok {
				return
			}
			if ownerID := owner(r); ownerID != "" && ownerID == p.ID {
				next.ServeHTTP(w, r)
				return
			}
			if !UserHasPermission(p, perm) {
				m.deny(w, r, p, perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) principal(w http.ResponseWriter, r *http.Request) (*shared.Principal, bool) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.AuthenticationRequired(w, "no authenticated principal")
		return nil, false
	}
	return p, true
}

func (m Middleware) deny(w http.ResponseWriter, r *http.Request, p *shared.Principal, required string) {
	if m.Logger != nil {
		m.Logger.Warn("authorization denied",
			slog.String("path", r.URL.Path),
			slog.String("role", p.Role),
			slog.String("required", required))
	}
	httpx.AuthorizationDenied(w, required)
}
