package users

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/rbac"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes. Profile reads and renames are
// self-service: the owner gets through without user:manage.
func (h *Handler) MountRoutes(r chi.Router) {
	ownerParam := func(r *http.Request) string { return chi.URLParam(r, "userID") }

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermUserManage, rbac.PermAdminAccess))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireOwnershipOr(rbac.PermUserManage, ownerParam))
		r.Get("/{userID}", h.get)
		r.Put("/{userID}", h.rename)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(rbac.RoleAdmin, rbac.RoleSuperAdmin))
		r.Delete("/{userID}", h.deactivate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, pagination, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": items, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err, "get user")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Name == "" {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", "name is required")
		return
	}
	user, err := h.service.Rename(r.Context(), chi.URLParam(r, "userID"), req.Name)
	if err != nil {
		h.respondErr(w, err, "rename user")
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deactivate(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.respondErr(w, err, "deactivate user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.ProblemCode(w, http.StatusNotFound, httpx.CodeNotFound, "Not Found", "user not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
