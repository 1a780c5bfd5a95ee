package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/reachloop/reachloop/internal/auth"
	"github.com/reachloop/reachloop/internal/campaigns"
	"github.com/reachloop/reachloop/internal/influencers"
	"github.com/reachloop/reachloop/internal/observability"
	"github.com/reachloop/reachloop/internal/rbac"
	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Authenticator      auth.Authenticator
	AuthHandler        *auth.Handler
	SessionsHandler    *sessions.Handler
	RBACHandler        *rbac.Handler
	UsersHandler       *users.Handler
	InfluencersHandler *influencers.Handler
	CampaignsHandler   *campaigns.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Reachloop defaults. Everything
// under the authenticated group runs authenticate-then-authorize: the
// authenticator resolves a principal first, the per-route RBAC gates decide
// afterwards.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(LoginRateLimit())
			params.AuthHandler.MountRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Authenticator.Middleware)
			params.AuthHandler.MountProtectedRoutes(r)
			r.Route("/sessions", params.SessionsHandler.MountRoutes)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Route("/rbac", params.RBACHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/influencers", params.InfluencersHandler.MountRoutes)
		r.Route("/campaigns", params.CampaignsHandler.MountRoutes)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
