package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pulsetrack-go/pkg/logging"
)

// ErrorResponse represents an error response to be sent to the client
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"trace_id,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handler handles errors and writes appropriate HTTP responses
type Handler struct {
	logErrors bool
}

// NewHandler creates a new error handler
func NewHandler(logErrors bool) *Handler {
	return &Handler{logErrors: logErrors}
}

// Handle converts err to an AppError and writes the JSON response
func (h *Handler) Handle(w http.ResponseWriter, err error, traceID string) {
	w.Header().Set("Content-Type", "application/json")

	var appErr *AppError
	if ae, ok := err.(*AppError); ok {
		appErr = ae
	} else {
		// Unknown errors are never passed through to the client verbatim
		appErr = InternalErrorf("INTERNAL_ERROR", "An unexpected error occurred")
		appErr.Wrap(err)
	}

	if h.logErrors {
		h.logError(appErr, traceID)
	}

	w.WriteHeader(appErr.StatusCode)

	response := &ErrorResponse{
		TraceID: traceID,
		Error: ErrorDetail{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	}
	_ = json.NewEncoder(w).Encode(response)
}

func (h *Handler) logError(appErr *AppError, traceID string) {
	fields := []zap.Field{
		zap.String("trace_id", traceID),
		zap.String("type", string(appErr.Type)),
		zap.String("code", appErr.Code),
	}
	if appErr.Err != nil {
		fields = append(fields, zap.Error(appErr.Err))
	}
	logging.Get().Error(appErr.Message, fields...)
}
