package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/models"
)

func TestPasswordManager_HashAndVerify(t *testing.T) {
	pm := NewPasswordManager()

	hash, err := pm.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	ok, err := pm.VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pm.VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordManager_HashesAreSalted(t *testing.T) {
	pm := NewPasswordManager()

	h1, err := pm.HashPassword("same password")
	require.NoError(t, err)
	h2, err := pm.HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestPasswordManager_VerifyGarbageHash(t *testing.T) {
	pm := NewPasswordManager()

	_, err := pm.VerifyPassword("anything", "not base64!!!")
	assert.Error(t, err)

	_, err = pm.VerifyPassword("anything", "dG9vIHNob3J0")
	assert.Error(t, err)
}

func TestTokenManager_GenerateAndVerify(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "pulsetrack")

	token, err := tm.GenerateToken("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenManager_RejectsWrongKey(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "pulsetrack")
	other := NewTokenManager("other-secret", time.Hour, "pulsetrack")

	token, err := tm.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, "pulsetrack")

	token, err := tm.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	_, err = tm.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "someone-else")
	verifier := NewTokenManager("test-secret", time.Hour, "pulsetrack")

	token, err := tm.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

// mockUserRepo and mockSessionRepo are minimal in-memory repositories for
// session manager tests

type mockUserRepo struct {
	users map[string]*models.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

type mockSessionRepo struct {
	sessions map[string]*models.Session
}

func (m *mockSessionRepo) Create(ctx context.Context, session *models.Session) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64
	for id, s := range m.sessions {
		if time.Now().After(s.ExpiresAt) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestSessionManager(t *testing.T) (*SessionManager, *mockUserRepo, *mockSessionRepo) {
	t.Helper()

	userRepo := &mockUserRepo{users: make(map[string]*models.User)}
	sessionRepo := &mockSessionRepo{sessions: make(map[string]*models.Session)}

	pm := NewPasswordManager()
	hash, err := pm.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	userRepo.users["user-1"] = &models.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: hash,
	}

	tm := NewTokenManager("test-secret", time.Hour, "pulsetrack")
	return NewSessionManager(userRepo, sessionRepo, pm, tm, time.Hour), userRepo, sessionRepo
}

func TestSessionManager_LoginAndValidate(t *testing.T) {
	sm, userRepo, _ := newTestSessionManager(t)
	ctx := context.Background()

	result, err := sm.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.Equal(t, "user-1", result.User.ID)
	assert.NotNil(t, userRepo.users["user-1"].LastLoginAt)

	userID, err := sm.ValidateSession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionManager_LoginRejectsBadCredentials(t *testing.T) {
	sm, _, _ := newTestSessionManager(t)
	ctx := context.Background()

	_, err := sm.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	ae, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.AuthenticationError, ae.Type)

	// Unknown user fails with the same error as a wrong password
	_, err2 := sm.Login(ctx, "nobody", "hunter2hunter2")
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestSessionManager_LogoutRevokes(t *testing.T) {
	sm, _, _ := newTestSessionManager(t)
	ctx := context.Background()

	result, err := sm.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, sm.Logout(ctx, result.Token))

	_, err = sm.ValidateSession(ctx, result.Token)
	require.Error(t, err)

	// Logging out again is a no-op
	require.NoError(t, sm.Logout(ctx, result.Token))
}

func TestSessionManager_ValidateRejectsExpiredSession(t *testing.T) {
	sm, _, sessionRepo := newTestSessionManager(t)
	ctx := context.Background()

	result, err := sm.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)

	for _, s := range sessionRepo.sessions {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err = sm.ValidateSession(ctx, result.Token)
	assert.Error(t, err)
}

func TestSessionManager_ValidateRejectsUnknownToken(t *testing.T) {
	sm, _, _ := newTestSessionManager(t)

	_, err := sm.ValidateSession(context.Background(), "garbage-token")
	assert.Error(t, err)
}
