package influencers

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/rbac"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler manages influencer endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers influencer routes. Deletion requires admin rank or
// above regardless of individual permissions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(rbac.PermInfluencerRead))
		r.Get("/", h.list)
		r.Get("/{influencerID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(rbac.PermInfluencerWrite))
		r.Post("/", h.create)
		r.Put("/{influencerID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireMinRole(rbac.RoleAdmin))
		r.Delete("/{influencerID}", h.remove)
	})
}

type influencerRequest struct {
	Name      string `json:"name" validate:"required"`
	Handle    string `json:"handle" validate:"required"`
	Platform  string `json:"platform" validate:"required,oneof=instagram tiktok youtube twitch"`
	Followers int64  `json:"followers" validate:"gte=0"`
	Niche     string `json:"niche"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, pagination, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list influencers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Influencer{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"influencers": items, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inf, err := h.service.Get(r.Context(), chi.URLParam(r, "influencerID"))
	if err != nil {
		h.respondErr(w, err, "get influencer")
		return
	}
	httpx.JSON(w, http.StatusOK, inf)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	inf, err := h.service.Create(r.Context(), Influencer{
		Name: req.Name, Handle: req.Handle, Platform: req.Platform,
		Followers: req.Followers, Niche: req.Niche,
	})
	if err != nil {
		h.respondErr(w, err, "create influencer")
		return
	}
	httpx.JSON(w, http.StatusCreated, inf)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	inf, err := h.service.Update(r.Context(), Influencer{
		ID:   chi.URLParam(r, "influencerID"),
		Name: req.Name, Handle: req.Handle, Platform: req.Platform,
		Followers: req.Followers, Niche: req.Niche,
	})
	if err != nil {
		h.respondErr(w, err, "update influencer")
		return
	}
	httpx.JSON(w, http.StatusOK, inf)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "influencerID")); err != nil {
		h.respondErr(w, err, "delete influencer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (influencerRequest, bool) {
	var req influencerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", "invalid JSON body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.ProblemCode(w, http.StatusNotFound, httpx.CodeNotFound, "Not Found", "influencer not found")
	case errors.Is(err, shared.ErrDuplicate):
		httpx.ProblemCode(w, http.StatusConflict, httpx.CodeDuplicate, "Duplicate", "handle already registered")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
