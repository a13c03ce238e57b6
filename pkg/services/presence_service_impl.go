package services

import (
	"context"
	"fmt"
	"time"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/repository"
)

// PresenceServiceImpl implements PresenceService
type PresenceServiceImpl struct {
	presenceRepo repository.PresenceRepository
}

// NewPresenceService creates a new presence service
func NewPresenceService(presenceRepo repository.PresenceRepository) PresenceService {
	return &PresenceServiceImpl{presenceRepo: presenceRepo}
}

// GetStatus returns the user's presence row, lazily seeding an OFFLINE row
// on first read so callers never see "no status".
func (s *PresenceServiceImpl) GetStatus(ctx context.Context, userID string) (*models.PresenceStatus, error) {
	status, err := s.presenceRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get presence status: %w", err)
	}
	if status != nil {
		return status, nil
	}

	status = &models.PresenceStatus{
		UserID:        userID,
		CurrentStatus: models.StateOffline,
		LastActivity:  time.Now().UTC(),
	}
	if err := s.presenceRepo.Upsert(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to seed presence status: %w", err)
	}
	return status, nil
}

// SetStatus overwrites the user's presence row with the supplied fields.
// Fields left nil keep their stored values; a missing LastActivity defaults
// to now. Last write wins, there is no staleness check.
func (s *PresenceServiceImpl) SetStatus(ctx context.Context, userID string, update PresenceUpdate) (*models.PresenceStatus, error) {
	if userID == "" {
		return nil, apperrors.ValidationErrorf("MISSING_USER_ID", "user id is required")
	}
	if !update.Status.Valid() {
		return nil, apperrors.ValidationErrorf("INVALID_STATUS", "unknown presence status: %s", update.Status)
	}

	status, err := s.presenceRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get presence status: %w", err)
	}
	if status == nil {
		status = &models.PresenceStatus{UserID: userID}
	}

	status.CurrentStatus = update.Status
	if update.LastActivity != nil {
		status.LastActivity = *update.LastActivity
	} else {
		status.LastActivity = time.Now().UTC()
	}
	if update.CurrentApp != nil {
		status.CurrentApp = *update.CurrentApp
	}
	if update.CurrentWindow != nil {
		status.CurrentWindow = *update.CurrentWindow
	}

	if err := s.presenceRepo.Upsert(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to upsert presence status: %w", err)
	}
	return status, nil
}

// ListActive returns every user currently ACTIVE or IDLE, joined with the
// owner's public profile. OFFLINE rows are excluded.
func (s *PresenceServiceImpl) ListActive(ctx context.Context) ([]*models.ActiveUserStatus, error) {
	statuses, err := s.presenceRepo.ListByStates(ctx, []models.PresenceState{
		models.StateActive,
		models.StateIdle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	result := make([]*models.ActiveUserStatus, 0, len(statuses))
	for _, status := range statuses {
		entry := &models.ActiveUserStatus{
			UserID:        status.UserID,
			CurrentStatus: status.CurrentStatus,
			LastActivity:  status.LastActivity,
			CurrentApp:    status.CurrentApp,
			CurrentWindow: status.CurrentWindow,
		}
		if status.User != nil {
			entry.User = status.User.Profile()
		}
		result = append(result, entry)
	}
	return result, nil
}
