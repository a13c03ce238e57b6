package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "pulsetrack-go/pkg/errors"
	"pulsetrack-go/pkg/metrics"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/repository"
)

const defaultListLimit = 50

// statusForEvent maps an event kind to the presence state it implies.
// Unknown kinds never reach this table (validation rejects them first);
// the ACTIVE fallback covers future kinds conservatively.
var statusForEvent = map[models.EventKind]models.PresenceState{
	models.KindApplicationFocus: models.StateActive,
	models.KindWindowChange:     models.StateActive,
	models.KindIdleStart:        models.StateIdle,
	models.KindIdleEnd:          models.StateActive,
	models.KindSystemLock:       models.StateIdle,
	models.KindSystemUnlock:     models.StateActive,
}

// StateForEvent returns the presence state implied by an event kind
func StateForEvent(kind models.EventKind) models.PresenceState {
	if state, ok := statusForEvent[kind]; ok {
		return state
	}
	return models.StateActive
}

// ActivityServiceImpl implements ActivityService
type ActivityServiceImpl struct {
	activityRepo repository.ActivityRepository
	presence     PresenceService
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo repository.ActivityRepository, presence PresenceService) ActivityService {
	return &ActivityServiceImpl{
		activityRepo: activityRepo,
		presence:     presence,
	}
}

func validateRecordInput(input RecordActivityInput) error {
	if _, ok := statusForEvent[input.Kind]; !ok {
		return apperrors.ValidationErrorf("INVALID_EVENT_KIND", "unknown event kind: %s", input.Kind)
	}
	if input.StartTime.IsZero() {
		return apperrors.ValidationErrorf("MISSING_START_TIME", "start_time is required")
	}
	if input.DurationSeconds != nil && *input.DurationSeconds < 0 {
		return apperrors.ValidationErrorf("INVALID_DURATION", "duration_seconds must not be negative")
	}
	return nil
}

// Record validates and persists one activity event, then folds it into the
// reporter's presence row. The presence side effect uses the event's
// StartTime as last_activity, never the server clock.
func (s *ActivityServiceImpl) Record(ctx context.Context, userID string, input RecordActivityInput) (*models.ActivityEvent, error) {
	if userID == "" {
		return nil, apperrors.ValidationErrorf("MISSING_USER_ID", "user id is required")
	}
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}

	event := &models.ActivityEvent{
		ID:              uuid.New().String(),
		UserID:          userID,
		Kind:            input.Kind,
		ApplicationName: input.ApplicationName,
		WindowTitle:     input.WindowTitle,
		ProcessName:     input.ProcessName,
		OperatingSystem: input.OperatingSystem,
		DeviceName:      input.DeviceName,
		IPAddress:       input.IPAddress,
		UserAgent:       input.UserAgent,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		DurationSeconds: input.DurationSeconds,
		Metadata:        input.Metadata,
	}

	if err := s.activityRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	update := PresenceUpdate{
		Status:       StateForEvent(input.Kind),
		LastActivity: &event.StartTime,
	}
	if input.ApplicationName != "" {
		update.CurrentApp = &event.ApplicationName
	}
	if input.WindowTitle != "" {
		update.CurrentWindow = &event.WindowTitle
	}
	if _, err := s.presence.SetStatus(ctx, userID, update); err != nil {
		return nil, fmt.Errorf("failed to update presence from activity: %w", err)
	}

	metrics.EventsRecorded.WithLabelValues(string(event.Kind)).Inc()
	return event, nil
}

// RecordBatch records each input independently and reports per-item
// outcomes in input order. A failing item never aborts the rest.
func (s *ActivityServiceImpl) RecordBatch(ctx context.Context, userID string, inputs []RecordActivityInput) []BatchResult {
	results := make([]BatchResult, 0, len(inputs))
	for _, input := range inputs {
		event, err := s.Record(ctx, userID, input)
		if err != nil {
			results = append(results, BatchResult{Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{Success: true, Event: event})
	}
	return results
}

// List returns a page of the user's events, newest start_time first.
// A missing or non-positive limit defaults to 50.
func (s *ActivityServiceImpl) List(ctx context.Context, userID string, query models.ActivityQuery) ([]*models.ActivityEvent, error) {
	if query.Limit <= 0 {
		query.Limit = defaultListLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	events, err := s.activityRepo.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return events, nil
}

// Get returns one event owned by the user. Events owned by other users are
// indistinguishable from missing ones.
func (s *ActivityServiceImpl) Get(ctx context.Context, userID, eventID string) (*models.ActivityEvent, error) {
	event, err := s.activityRepo.GetByIDForUser(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if event == nil {
		return nil, apperrors.NotFoundErrorf("ACTIVITY_NOT_FOUND", "activity %s not found", eventID)
	}
	return event, nil
}

// Update applies a partial update to an event owned by the user. Supplied
// fields face the same validation as Record.
func (s *ActivityServiceImpl) Update(ctx context.Context, userID, eventID string, input UpdateActivityInput) (*models.ActivityEvent, error) {
	if input.Kind != nil {
		if _, ok := statusForEvent[*input.Kind]; !ok {
			return nil, apperrors.ValidationErrorf("INVALID_EVENT_KIND", "unknown event kind: %s", *input.Kind)
		}
	}
	if input.StartTime != nil && input.StartTime.IsZero() {
		return nil, apperrors.ValidationErrorf("MISSING_START_TIME", "start_time must be a valid timestamp")
	}
	if input.DurationSeconds != nil && *input.DurationSeconds < 0 {
		return nil, apperrors.ValidationErrorf("INVALID_DURATION", "duration_seconds must not be negative")
	}

	event, err := s.Get(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if input.Kind != nil {
		event.Kind = *input.Kind
	}
	if input.ApplicationName != nil {
		event.ApplicationName = *input.ApplicationName
	}
	if input.WindowTitle != nil {
		event.WindowTitle = *input.WindowTitle
	}
	if input.ProcessName != nil {
		event.ProcessName = *input.ProcessName
	}
	if input.OperatingSystem != nil {
		event.OperatingSystem = *input.OperatingSystem
	}
	if input.DeviceName != nil {
		event.DeviceName = *input.DeviceName
	}
	if input.IPAddress != nil {
		event.IPAddress = *input.IPAddress
	}
	if input.UserAgent != nil {
		event.UserAgent = *input.UserAgent
	}
	if input.StartTime != nil {
		event.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		event.EndTime = input.EndTime
	}
	if input.DurationSeconds != nil {
		event.DurationSeconds = input.DurationSeconds
	}
	if input.Metadata != nil {
		event.Metadata = *input.Metadata
	}

	if err := s.activityRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}
	return event, nil
}

// Delete hard-deletes an event owned by the user
func (s *ActivityServiceImpl) Delete(ctx context.Context, userID, eventID string) error {
	affected, err := s.activityRepo.DeleteForUser(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundErrorf("ACTIVITY_NOT_FOUND", "activity %s not found", eventID)
	}
	return nil
}

// Stats aggregates one calendar day of the user's events. The window runs
// from 00:00:00.000 to 23:59:59.999 in the given date's location.
// TotalDuration sums only the client-supplied duration field; it is never
// derived from start/end timestamps.
func (s *ActivityServiceImpl) Stats(ctx context.Context, userID string, date time.Time) (*ActivityStats, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	events, err := s.activityRepo.ListByUserBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity stats: %w", err)
	}

	stats := &ActivityStats{
		Date:             dayStart.Format("2006-01-02"),
		TotalActivities:  len(events),
		ApplicationUsage: make(map[string]int64),
		ActivityTimeline: make([]TimelineEntry, 0, len(events)),
	}

	// appOrder fixes first-seen order so the most-used pick is
	// deterministic under ties.
	var appOrder []string
	for _, event := range events {
		duration := event.Duration()
		stats.TotalDuration += duration

		if event.ApplicationName != "" {
			if _, seen := stats.ApplicationUsage[event.ApplicationName]; !seen {
				appOrder = append(appOrder, event.ApplicationName)
			}
			stats.ApplicationUsage[event.ApplicationName] += duration
		}

		stats.ActivityTimeline = append(stats.ActivityTimeline, TimelineEntry{
			Timestamp:       event.StartTime,
			Kind:            event.Kind,
			ApplicationName: event.ApplicationName,
			DurationSeconds: duration,
		})
	}

	var best int64 = -1
	for _, app := range appOrder {
		if usage := stats.ApplicationUsage[app]; usage > best {
			best = usage
			stats.MostUsedApp = app
		}
	}

	return stats, nil
}

// CleanupOldEvents hard-deletes events recorded more than daysToKeep days
// ago, across all users. The cutoff compares created_at (when the server
// stored the event), not start_time.
func (s *ActivityServiceImpl) CleanupOldEvents(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, apperrors.ValidationErrorf("INVALID_RETENTION", "days to keep must be at least 1")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	deleted, err := s.activityRepo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old activities: %w", err)
	}

	metrics.EventsDeleted.Add(float64(deleted))
	return deleted, nil
}
