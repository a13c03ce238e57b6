package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pulsetrack-go/pkg/models"
)

// ActivityRepositoryImpl implements ActivityRepository using GORM
type ActivityRepositoryImpl struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

// Create inserts a new activity event
func (r *ActivityRepositoryImpl) Create(ctx context.Context, event *models.ActivityEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create activity event: %w", err)
	}
	return nil
}

// GetByID retrieves an activity event by ID
func (r *ActivityRepositoryImpl) GetByID(ctx context.Context, id string) (*models.ActivityEvent, error) {
	var event models.ActivityEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity event: %w", err)
	}
	return &event, nil
}

// GetByIDForUser retrieves an activity event by ID scoped to its owner.
// Returns nil when the event does not exist or belongs to another user.
func (r *ActivityRepositoryImpl) GetByIDForUser(ctx context.Context, id, userID string) (*models.ActivityEvent, error) {
	var event models.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity event: %w", err)
	}
	return &event, nil
}

// ListByUser retrieves a user's events, newest start_time first
func (r *ActivityRepositoryImpl) ListByUser(ctx context.Context, userID string, query models.ActivityQuery) ([]*models.ActivityEvent, error) {
	var events []*models.ActivityEvent

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if query.StartDate != nil {
		q = q.Where("start_time >= ?", *query.StartDate)
	}
	if query.EndDate != nil {
		q = q.Where("start_time <= ?", *query.EndDate)
	}

	err := q.Order("start_time DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	return events, nil
}

// ListByUserBetween retrieves all of a user's events with start_time in
// [start, end], oldest first.
func (r *ActivityRepositoryImpl) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.ActivityEvent, error) {
	var events []*models.ActivityEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time <= ?", userID, start, end).
		Order("start_time ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	return events, nil
}

// Update saves all fields of an existing activity event
func (r *ActivityRepositoryImpl) Update(ctx context.Context, event *models.ActivityEvent) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update activity event: %w", err)
	}
	return nil
}

// DeleteForUser hard-deletes an event scoped to its owner and reports how
// many rows were removed.
func (r *ActivityRepositoryImpl) DeleteForUser(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete activity event: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteCreatedBefore hard-deletes all events recorded before the cutoff,
// across every user. The cutoff compares against created_at, not start_time.
func (r *ActivityRepositoryImpl) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old activity events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
