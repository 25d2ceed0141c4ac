package gradebook

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
	"github.com/Mehdichaaki/dashbord/internal/user"
	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router, protect func(http.Handler) http.Handler) {
	router.Get("/users/{id}/table", h.ListEntries)
	router.With(protect).Post("/users/{id}/table", h.CreateEntry)
	router.With(protect).Put("/users/{id}/table/{entryId}", h.UpdateEntry)
	router.With(protect).Delete("/users/{id}/table/{entryId}", h.DeleteEntry)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := user.ParseID(chi.URLParam(r, "id"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, user.ErrUserNotFound.Error())
		return
	}

	entries, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := user.ParseID(chi.URLParam(r, "id"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, user.ErrUserNotFound.Error())
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.logger.InfoContext(r.Context(), "recording grade entry", "user_id", userID, "subject", req.Subject)
	entry, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := h.parseIDs(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.Update(r.Context(), userID, entryID, req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := h.parseIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, entryID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := user.ParseID(chi.URLParam(r, "id"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, user.ErrUserNotFound.Error())
		return uuid.Nil, uuid.Nil, false
	}
	entryID, ok := user.ParseID(chi.URLParam(r, "entryId"))
	if !ok {
		httputil.RespondWithError(w, http.StatusNotFound, ErrEntryNotFound.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return userID, entryID, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		httputil.RespondWithFieldErrors(w, verr.Fields)
	case errors.Is(err, user.ErrUserNotFound), errors.Is(err, ErrEntryNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
