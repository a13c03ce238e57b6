package handlers

import (
	"net/http"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/http/middleware"
	"pulsetrack-go/pkg/httputil"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/services"
)

// StatusHandler serves the presence endpoints
type StatusHandler struct {
	presence   services.PresenceService
	errHandler *apperrors.Handler
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(presence services.PresenceService, errHandler *apperrors.Handler) *StatusHandler {
	return &StatusHandler{presence: presence, errHandler: errHandler}
}

// Get handles GET /api/activity/status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	status, err := h.presence.GetStatus(r.Context(), userID)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, status, "")
}

// Update handles PATCH /api/activity/status
func (h *StatusHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var update services.PresenceUpdate
	if err := decodeJSON(r, &update); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	status, err := h.presence.SetStatus(r.Context(), userID, update)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, status, "Status updated successfully")
}

// ListActive handles GET /api/activity/status/all
func (h *StatusHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	users, err := h.presence.ListActive(r.Context())
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	if users == nil {
		users = []*models.ActiveUserStatus{}
	}
	writeJSON(w, http.StatusOK, users, "")
}
