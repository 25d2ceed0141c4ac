package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
	"github.com/Mehdichaaki/dashbord/internal/metrics"
	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes mounts the user routes. protect guards the mutating ones.
func (h *Handler) RegisterRoutes(router chi.Router, protect func(http.Handler) http.Handler) {
	router.Get("/users", h.ListUsers)
	router.With(protect).Put("/users/{id}", h.UpdateUser)
	router.With(protect).Delete("/users/{id}", h.DeleteUser)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all users")

	users, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordUsersListViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(chi.URLParam(r, "id"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.InfoContext(r.Context(), "updating user", "id", id)
	user, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(chi.URLParam(r, "id"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, ErrUserNotFound.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "deleting user", "id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ParseID parses a path id. Malformed ids cannot name a stored record.
func ParseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httputil.RespondWithFieldErrors(w, verr.Fields)
	case errors.Is(err, ErrUserNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateEmail):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
