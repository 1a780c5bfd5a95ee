package auth

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/shared"
)

// SessionCookie is the cookie carrying the session token for browser
// clients; API clients send it as a bearer token instead.
const SessionCookie = "reachloop_session"

// Authenticator resolves a principal from the session token and installs it
// into the request context. Authorization gates run strictly after this.
type Authenticator struct {
	Logger   *slog.Logger
	Sessions *sessions.Service
}

// Middleware rejects requests without a valid session and stamps session
// activity best-effort on the way through.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				token = cookie.Value
			}
		}

		owned, err := a.Sessions.Validate(r.Context(), token)
		if err != nil {
			a.Logger.Error("validate session", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if owned == nil {
			httpx.AuthenticationRequired(w, "missing or invalid session")
			return
		}

		if err := a.Sessions.TouchActivity(r.Context(), owned.ID); err != nil {
			a.Logger.Warn("touch session activity", slog.Any("error", err))
		}

		principal := &shared.Principal{
			ID:        owned.UserID,
			Role:      owned.OwnerRole,
			SessionID: owned.ID,
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
