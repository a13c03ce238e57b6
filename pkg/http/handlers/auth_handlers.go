package handlers

import (
	"net/http"

	"pulsetrack-go/pkg/auth"
	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/http/middleware"
	"pulsetrack-go/pkg/httputil"
)

// AuthHandler serves login and logout
type AuthHandler struct {
	sessions   *auth.SessionManager
	errHandler *apperrors.Handler
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *auth.SessionManager, errHandler *apperrors.Handler) *AuthHandler {
	return &AuthHandler{sessions: sessions, errHandler: errHandler}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}
	if req.Username == "" || req.Password == "" {
		h.errHandler.Handle(w,
			apperrors.ValidationErrorf("MISSING_CREDENTIALS", "username and password are required"),
			httputil.GetTraceID(r))
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, result, "Login successful")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		h.errHandler.Handle(w,
			apperrors.AuthenticationErrorf("MISSING_TOKEN", "authentication required"),
			httputil.GetTraceID(r))
		return
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		h.errHandler.Handle(w, err, httputil.GetTraceID(r))
		return
	}

	writeJSON(w, http.StatusOK, nil, "Logged out successfully")
}
