package auth

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/reachloop/reachloop/internal/platform/httpx"
	"github.com/reachloop/reachloop/internal/sessions"
	"github.com/reachloop/reachloop/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	secure    bool
}

// NewHandler constructs a Handler instance. secure controls the cookie flag.
func NewHandler(logger *slog.Logger, service *Service, secure bool) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		secure:    secure,
	}
}

// MountRoutes registers the unauthenticated auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountProtectedRoutes registers routes that require a principal.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	DeviceInfo string `json:"device_info"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	SessionToken string `json:"session_token"`
	SessionID    string `json:"session_id"`
	ExpiresAt    string `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ProblemCode(w, http.StatusBadRequest, httpx.CodeValidation, "Validation Failed", err.Error())
		return
	}

	meta := sessions.Metadata{
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
		DeviceInfo: req.DeviceInfo,
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password, meta)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.AuthenticationRequired(w, "invalid email or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    result.Session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  result.Session.ExpiresAt,
	})

	var resp loginResponse
	resp.AccessToken = result.AccessToken
	resp.SessionToken = result.Session.Token
	resp.SessionID = result.Session.ID
	resp.ExpiresAt = result.Session.ExpiresAt.Format(time.RFC3339)
	resp.User.ID = result.User.ID
	resp.User.Email = result.User.Email
	resp.User.Name = result.User.Name
	resp.User.Role = result.User.Role
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.AuthenticationRequired(w, "no authenticated principal")
		return
	}
	if err := h.service.Logout(r.Context(), p.SessionID, p.ID); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
