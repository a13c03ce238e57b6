package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/http/middleware"
	"pulsetrack-go/pkg/httputil"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/services"
)

// ActivityHandler serves the activity recording and querying endpoints
type ActivityHandler struct {
	activity   services.ActivityService
	errHandler *apperrors.Handler
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activity services.ActivityService, errHandler *apperrors.Handler) *ActivityHandler {
	return &ActivityHandler{activity: activity, errHandler: errHandler}
}

// Record handles POST /api/activity/activities
func (h *ActivityHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var input services.RecordActivityInput
	if err := decodeJSON(r, &input); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	event, err := h.activity.Record(r.Context(), userID, input)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusCreated, event, "Activity recorded successfully")
}

// RecordBatch handles POST /api/activity/activities/batch
func (h *ActivityHandler) RecordBatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var inputs []services.RecordActivityInput
	if err := decodeJSON(r, &inputs); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}
	if len(inputs) == 0 {
		h.errHandler.Handle(w,
			apperrors.ValidationErrorf("EMPTY_BATCH", "batch must contain at least one activity"),
			httputil.GetTraceID(r))
		return
	}

	results := h.activity.RecordBatch(r.Context(), userID, inputs)
	writeJSON(w, http.StatusOK, results, fmt.Sprintf("Processed %d activities", len(results)))
}

// List handles GET /api/activity/activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	query, err := parseActivityQuery(r)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	events, err := h.activity.List(r.Context(), userID, query)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	if events == nil {
		events = []*models.ActivityEvent{}
	}
	writeJSON(w, http.StatusOK, events, "")
}

// Get handles GET /api/activity/activities/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	event, err := h.activity.Get(r.Context(), userID, eventID)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, event, "")
}

// Update handles PATCH /api/activity/activities/{id}
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	var input services.UpdateActivityInput
	if err := decodeJSON(r, &input); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	event, err := h.activity.Update(r.Context(), userID, eventID, input)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, event, "Activity updated successfully")
}

// Delete handles DELETE /api/activity/activities/{id}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	if err := h.activity.Delete(r.Context(), userID, eventID); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, nil, "Activity deleted successfully")
}

// Stats handles GET /api/activity/stats?date=YYYY-MM-DD
func (h *ActivityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	// Day boundaries are computed in the date's location, so the default
	// is server-local time
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.errHandler.Handle(w,
				apperrors.ValidationErrorf("INVALID_DATE", "date must be YYYY-MM-DD"),
				httputil.GetTraceID(r))
			return
		}
		date = parsed
	}

	stats, err := h.activity.Stats(r.Context(), userID, date)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, stats, "")
}

// Cleanup handles POST /api/activity/cleanup?days=N
func (h *ActivityHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.errHandler.Handle(w,
				apperrors.ValidationErrorf("INVALID_DAYS", "days must be an integer"),
				httputil.GetTraceID(r))
			return
		}
		days = parsed
	}

	deleted, err := h.activity.CleanupOldEvents(r.Context(), days)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deleted_count": deleted,
	}, fmt.Sprintf("Cleaned up %d old activities", deleted))
}

func parseActivityQuery(r *http.Request) (models.ActivityQuery, error) {
	var query models.ActivityQuery
	params := r.URL.Query()

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return query, apperrors.ValidationErrorf("INVALID_LIMIT", "limit must be a non-negative integer")
		}
		query.Limit = limit
	}
	if raw := params.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return query, apperrors.ValidationErrorf("INVALID_OFFSET", "offset must be a non-negative integer")
		}
		query.Offset = offset
	}
	// startDate/endDate accepted as aliases for older tracking clients
	if raw := firstParam(params, "start_date", "startDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return query, apperrors.ValidationErrorf("INVALID_START_DATE", "start_date must be RFC 3339")
		}
		query.StartDate = &parsed
	}
	if raw := firstParam(params, "end_date", "endDate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return query, apperrors.ValidationErrorf("INVALID_END_DATE", "end_date must be RFC 3339")
		}
		query.EndDate = &parsed
	}

	return query, nil
}

func firstParam(params url.Values, names ...string) string {
	for _, name := range names {
		if value := params.Get(name); value != "" {
			return value
		}
	}
	return ""
}
