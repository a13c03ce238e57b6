package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/repository"
)

// SessionManager authenticates users and validates bearer tokens against
// stored sessions. A token is only valid while its session row exists and
// is unexpired, so logout revokes immediately.
type SessionManager struct {
	userRepo      repository.UserRepository
	sessionRepo   repository.SessionRepository
	passwordMgr   *PasswordManager
	tokenMgr      *TokenManager
	sessionExpiry time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	passwordMgr *PasswordManager,
	tokenMgr *TokenManager,
	sessionExpiry time.Duration,
) *SessionManager {
	return &SessionManager{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		passwordMgr:   passwordMgr,
		tokenMgr:      tokenMgr,
		sessionExpiry: sessionExpiry,
	}
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login verifies credentials and issues a new session token
func (s *SessionManager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		// Same error as a wrong password: never reveal which part failed
		return nil, apperrors.AuthenticationErrorf("INVALID_CREDENTIALS", "invalid username or password")
	}

	ok, err := s.passwordMgr.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, apperrors.AuthenticationErrorf("INVALID_CREDENTIALS", "invalid username or password")
	}

	token, err := s.tokenMgr.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	expiresAt := time.Now().Add(s.sessionExpiry)
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateSession resolves a bearer token to its user ID
func (s *SessionManager) ValidateSession(ctx context.Context, token string) (string, error) {
	claims, err := s.tokenMgr.VerifyToken(token)
	if err != nil {
		return "", apperrors.AuthenticationErrorf("INVALID_TOKEN", "invalid or expired token").Wrap(err)
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return "", apperrors.AuthenticationErrorf("SESSION_NOT_FOUND", "session has been revoked")
	}
	if time.Now().After(session.ExpiresAt) {
		return "", apperrors.AuthenticationErrorf("SESSION_EXPIRED", "session has expired")
	}
	if session.UserID != claims.UserID {
		return "", apperrors.AuthenticationErrorf("INVALID_TOKEN", "token does not match session")
	}

	return session.UserID, nil
}

// Logout revokes the session behind a token. Revoking an unknown token is
// not an error.
func (s *SessionManager) Logout(ctx context.Context, token string) error {
	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
