package repository

import (
	"context"
	"time"

	"pulsetrack-go/pkg/models"
)

// ActivityRepository persists the immutable activity event stream
type ActivityRepository interface {
	Create(ctx context.Context, event *models.ActivityEvent) error
	GetByID(ctx context.Context, id string) (*models.ActivityEvent, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*models.ActivityEvent, error)
	ListByUser(ctx context.Context, userID string, query models.ActivityQuery) ([]*models.ActivityEvent, error)
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.ActivityEvent, error)
	Update(ctx context.Context, event *models.ActivityEvent) error
	DeleteForUser(ctx context.Context, id, userID string) (int64, error)
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PresenceRepository persists the one-row-per-user presence projection
type PresenceRepository interface {
	Get(ctx context.Context, userID string) (*models.PresenceStatus, error)
	Upsert(ctx context.Context, status *models.PresenceStatus) error
	ListByStates(ctx context.Context, states []models.PresenceState) ([]*models.PresenceStatus, error)
}

// UserRepository persists user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// SessionRepository persists issued bearer tokens
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
