package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skyfalke/backoffice/internal/platform/httpx"
	"github.com/skyfalke/backoffice/internal/shared"
)

// Handler serves the notification endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a notification handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes on the router. All routes assume
// the auth middleware has already populated the caller identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/{id}/read", h.MarkRead)
	r.Post("/read-all", h.MarkAllRead)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.service.ListForUser(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("unread count", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.MarkRead(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "notification not found")
			return
		}
		h.logger.Error("mark notification read", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if err := h.service.MarkAllRead(r.Context(), identity.UserID); err != nil {
		h.logger.Error("mark all notifications read", "error", err)
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
