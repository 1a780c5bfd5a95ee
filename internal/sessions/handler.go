package sessions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reachloop/reachloop/internal/observability"
	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler exposes self-service device management: list my sessions, revoke
// one, log out everywhere or everywhere-but-here. Every route is scoped to
// the authenticated principal; other users' sessions are invisible.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler builds Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes registers session routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/count", h.count)
	r.Post("/revoke-all", h.revokeAll)
	r.Post("/revoke-by-type", h.revokeByType)
	r.Get("/{sessionID}", h.get)
	r.Delete("/{sessionID}", h.revoke)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")

	items, pagination, err := h.service.List(r.Context(), p.ID, status, page, limit)
	if err != nil {
		h.logger.Error("list sessions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Session{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sessions":   items,
		"pagination": pagination,
	})
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	count, err := h.service.CountActive(r.Context(), p.ID)
	if err != nil {
		h.logger.Error("count sessions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"active": count})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	sess, err := h.service.GetByID(r.Context(), chi.URLParam(r, "sessionID"), p.ID)
	if err != nil {
		h.logger.Error("get session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if sess == nil {
		httpx.ProblemCode(w, http.StatusNotFound, httpx.CodeNotFound, "Not Found", "session not found")
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	revoked, err := h.service.Revoke(r.Context(), chi.URLParam(r, "sessionID"), p.ID)
	if err != nil {
		h.logger.Error("revoke session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !revoked {
		httpx.ProblemCode(w, http.StatusNotFound, httpx.CodeNotFound, "Not Found", "session not found")
		return
	}
	h.metrics.SessionRevoked()
	w.WriteHeader(http.StatusNoContent)
}

type revokeAllRequest struct {
	KeepCurrent bool `json:"keep_current"`
}

func (h *Handler) revokeAll(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req revokeAllRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", "invalid JSON body")
			return
		}
	}
	exclude := ""
	if req.KeepCurrent {
		exclude = p.SessionID
	}
	count, err := h.service.RevokeAll(r.Context(), p.ID, exclude)
	if err != nil {
		h.logger.Error("revoke all sessions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"revoked": count})
}

type revokeByTypeRequest struct {
	DeviceType string `json:"device_type"`
}

func (h *Handler) revokeByType(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	var req revokeByTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.DeviceType == "" {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", "device_type is required")
		return
	}
	count, err := h.service.RevokeByDeviceType(r.Context(), p.ID, req.DeviceType)
	if err != nil {
		h.logger.Error("revoke sessions by type", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"revoked": count})
}
