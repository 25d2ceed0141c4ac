package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
	"github.com/Mehdichaaki/dashbord/internal/metrics"
	"github.com/Mehdichaaki/dashbord/internal/user"
	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	limiter *LoginLimiter
	proxies *TrustedProxies
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service *Service, limiter *LoginLimiter, proxies *TrustedProxies, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
		proxies: proxies,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/users/register", h.Register)
	router.With(RateLimit(h.limiter, h.proxies, h.metrics, h.logger)).Post("/users/login", h.Login)
}

// Register creates a new user account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordUserRegistration(r.Context())
	h.logger.InfoContext(r.Context(), "user registered", "id", created.ID)

	httputil.RespondWithJSON(w, http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		User:    created,
	})
}

// Login authenticates a user and returns a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.RecordLoginFailed(r.Context())
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordLoginSucceeded(r.Context())
	h.logger.InfoContext(r.Context(), "user logged in", "id", resp.User.ID)

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httputil.RespondWithFieldErrors(w, verr.Fields)
	case errors.Is(err, user.ErrDuplicateEmail):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
