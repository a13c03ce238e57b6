package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulsetrack-go/pkg/models"
)

// PresenceRepositoryImpl implements PresenceRepository using GORM
type PresenceRepositoryImpl struct {
	db *gorm.DB
}

// NewPresenceRepository creates a new presence repository
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &PresenceRepositoryImpl{db: db}
}

// Get retrieves a user's presence row, or nil when none exists yet
func (r *PresenceRepositoryImpl) Get(ctx context.Context, userID string) (*models.PresenceStatus, error) {
	var status models.PresenceStatus
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&status).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get presence status: %w", err)
	}
	return &status, nil
}

// Upsert writes the presence row, overwriting any existing row for the user.
// Last write wins: there is no version check.
func (r *PresenceRepositoryImpl) Upsert(ctx context.Context, status *models.PresenceStatus) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_status", "last_activity", "current_app", "current_window", "updated_at",
			}),
		}).
		Create(status).Error
	if err != nil {
		return fmt.Errorf("failed to upsert presence status: %w", err)
	}
	return nil
}

// ListByStates retrieves presence rows in any of the given states with the
// owning user preloaded, most recently active first.
func (r *PresenceRepositoryImpl) ListByStates(ctx context.Context, states []models.PresenceState) ([]*models.PresenceStatus, error) {
	var statuses []*models.PresenceStatus
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("current_status IN ?", states).
		Order("last_activity DESC").
		Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list presence statuses: %w", err)
	}
	return statuses, nil
}
