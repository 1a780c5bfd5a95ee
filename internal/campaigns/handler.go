package campaigns

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/rbac"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler manages campaign endpoints.
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

// MountRoutes registers campaign routes. Deleting a campaign needs both the
// delete and manage capabilities.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(rbac.PermCampaignRead))
		r.Get("/", h.list)
		r.Get("/{campaignID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequirePermission(rbac.PermCampaignWrite))
		r.Post("/", h.create)
		r.Put("/{campaignID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermCampaignDelete, rbac.PermCampaignManage))
		r.Delete("/{campaignID}", h.remove)
	})
}

type campaignRequest struct {
	Name        string    `json:"name" validate:"required"`
	Brand       string    `json:"brand" validate:"required"`
	BudgetCents int64     `json:"budget_cents" validate:"gte=0"`
	Status      string    `json:"status" validate:"omitempty,oneof=draft active completed"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, pagination, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list campaigns", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Campaign{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"campaigns": items, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.respondErr(w, err, "get campaign")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	c, err := h.service.Create(r.Context(), Campaign{
		Name: req.Name, Brand: req.Brand, BudgetCents: req.BudgetCents,
		StartsAt: req.StartsAt, EndsAt: req.EndsAt,
	}, p.ID)
	if err != nil {
		h.respondErr(w, err, "create campaign")
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	status := req.Status
	if status == "" {
		status = StatusDraft
	}
	c, err := h.service.Update(r.Context(), Campaign{
		ID:   chi.URLParam(r, "campaignID"),
		Name: req.Name, Brand: req.Brand, BudgetCents: req.BudgetCents,
		Status: status, StartsAt: req.StartsAt, EndsAt: req.EndsAt,
	})
	if err != nil {
		h.respondErr(w, err, "update campaign")
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		h.respondErr(w, err, "delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (campaignRequest, bool) {
	var req campaignRequest
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
	if errors.Is(err, shared.ErrNotFound) {
		httpx.ProblemCode(w, http.StatusNotFound, httpx.CodeNotFound, "Not Found", "campaign not found")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
