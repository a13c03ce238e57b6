package services

import (
	"context"
	"time"

	"pulsetrack-go/pkg/models"
)

// mockActivityRepository is an in-memory ActivityRepository for service tests
type mockActivityRepository struct {
	events    []*models.ActivityEvent
	createErr error
}

func (m *mockActivityRepository) Create(ctx context.Context, event *models.ActivityEvent) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *event
	m.events = append(m.events, &copied)
	return nil
}

func (m *mockActivityRepository) GetByID(ctx context.Context, id string) (*models.ActivityEvent, error) {
	for _, e := range m.events {
		if e.ID == id {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockActivityRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.ActivityEvent, error) {
	for _, e := range m.events {
		if e.ID == id && e.UserID == userID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockActivityRepository) ListByUser(ctx context.Context, userID string, query models.ActivityQuery) ([]*models.ActivityEvent, error) {
	var matched []*models.ActivityEvent
	for _, e := range m.events {
		if e.UserID != userID {
			continue
		}
		if query.StartDate != nil && e.StartTime.Before(*query.StartDate) {
			continue
		}
		if query.EndDate != nil && e.StartTime.After(*query.EndDate) {
			continue
		}
		matched = append(matched, e)
	}
	// newest first
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].StartTime.After(matched[i].StartTime) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	if query.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[query.Offset:]
	if query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (m *mockActivityRepository) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.ActivityEvent, error) {
	var matched []*models.ActivityEvent
	for _, e := range m.events {
		if e.UserID != userID || e.StartTime.Before(start) || e.StartTime.After(end) {
			continue
		}
		matched = append(matched, e)
	}
	// oldest first
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].StartTime.Before(matched[i].StartTime) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	return matched, nil
}

func (m *mockActivityRepository) Update(ctx context.Context, event *models.ActivityEvent) error {
	for i, e := range m.events {
		if e.ID == event.ID {
			copied := *event
			m.events[i] = &copied
			return nil
		}
	}
	return nil
}

func (m *mockActivityRepository) DeleteForUser(ctx context.Context, id, userID string) (int64, error) {
	for i, e := range m.events {
		if e.ID == id && e.UserID == userID {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockActivityRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var kept []*models.ActivityEvent
	var deleted int64
	for _, e := range m.events {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}

// mockPresenceRepository is an in-memory PresenceRepository for service tests
type mockPresenceRepository struct {
	rows map[string]*models.PresenceStatus
}

func newMockPresenceRepository() *mockPresenceRepository {
	return &mockPresenceRepository{rows: make(map[string]*models.PresenceStatus)}
}

func (m *mockPresenceRepository) Get(ctx context.Context, userID string) (*models.PresenceStatus, error) {
	row, ok := m.rows[userID]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *mockPresenceRepository) Upsert(ctx context.Context, status *models.PresenceStatus) error {
	copied := *status
	m.rows[status.UserID] = &copied
	return nil
}

func (m *mockPresenceRepository) ListByStates(ctx context.Context, states []models.PresenceState) ([]*models.PresenceStatus, error) {
	wanted := make(map[models.PresenceState]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}
	var matched []*models.PresenceStatus
	for _, row := range m.rows {
		if wanted[row.CurrentStatus] {
			copied := *row
			matched = append(matched, &copied)
		}
	}
	// most recently active first
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].LastActivity.After(matched[i].LastActivity) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	return matched, nil
}
