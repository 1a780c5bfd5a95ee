package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler exposes read-only catalog introspection endpoints.
type Handler struct {
	rbac Middleware
}

// NewHandler builds Handler instance.
func NewHandler(rbac Middleware) *Handler {
	return &Handler{rbac: rbac}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(PermRoleManage))
		r.Get("/roles", h.listRoles)
	})
}

type roleView struct {
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := AvailableRoles()
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleView{
			Name:        role,
			Level:       HierarchyLevel(role),
			Permissions: PermissionsFor(role),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.AuthenticationRequired(w, "no authenticated principal")
		return
	}
	httpx.JSON(w, http.StatusOK, roleView{
		Name:        p.Role,
		Level:       HierarchyLevel(p.Role),
		Permissions: PermissionsFor(p.Role),
	})
}
