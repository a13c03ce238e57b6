package services

import (
	"context"
	"encoding/json"
	"time"

	"pulsetrack-go/pkg/models"
)

// RecordActivityInput carries one client-reported activity event
type RecordActivityInput struct {
	Kind            models.EventKind `json:"kind"`
	ApplicationName string           `json:"application_name,omitempty"`
	WindowTitle     string           `json:"window_title,omitempty"`
	ProcessName     string           `json:"process_name,omitempty"`
	OperatingSystem string           `json:"operating_system,omitempty"`
	DeviceName      string           `json:"device_name,omitempty"`
	IPAddress       string           `json:"ip_address,omitempty"`
	UserAgent       string           `json:"user_agent,omitempty"`
	StartTime       time.Time        `json:"start_time"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	DurationSeconds *int64           `json:"duration_seconds,omitempty"`
	Metadata        json.RawMessage  `json:"metadata,omitempty"`
}

// UpdateActivityInput carries a partial update to an existing event.
// Every field except the event's identity and owner is mutable; nil
// fields are left unchanged.
type UpdateActivityInput struct {
	Kind            *models.EventKind `json:"kind,omitempty"`
	ApplicationName *string           `json:"application_name,omitempty"`
	WindowTitle     *string           `json:"window_title,omitempty"`
	ProcessName     *string           `json:"process_name,omitempty"`
	OperatingSystem *string           `json:"operating_system,omitempty"`
	DeviceName      *string           `json:"device_name,omitempty"`
	IPAddress       *string           `json:"ip_address,omitempty"`
	UserAgent       *string           `json:"user_agent,omitempty"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	DurationSeconds *int64            `json:"duration_seconds,omitempty"`
	Metadata        *json.RawMessage  `json:"metadata,omitempty"`
}

// BatchResult is the per-item outcome of a batch record. Results are
// returned in input order; one bad item never fails the batch.
type BatchResult struct {
	Success bool                  `json:"success"`
	Event   *models.ActivityEvent `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// TimelineEntry is one point on a user's daily activity timeline
type TimelineEntry struct {
	Timestamp       time.Time        `json:"timestamp"`
	Kind            models.EventKind `json:"kind"`
	ApplicationName string           `json:"application_name,omitempty"`
	DurationSeconds int64            `json:"duration_seconds"`
}

// ActivityStats is the daily aggregate for one user
type ActivityStats struct {
	Date             string           `json:"date"`
	TotalActivities  int              `json:"total_activities"`
	TotalDuration    int64            `json:"total_duration"`
	ApplicationUsage map[string]int64 `json:"application_usage"`
	ActivityTimeline []TimelineEntry  `json:"activity_timeline"`
	MostUsedApp      string           `json:"most_used_app,omitempty"`
}

// ActivityService records and queries the activity event stream
type ActivityService interface {
	Record(ctx context.Context, userID string, input RecordActivityInput) (*models.ActivityEvent, error)
	RecordBatch(ctx context.Context, userID string, inputs []RecordActivityInput) []BatchResult
	List(ctx context.Context, userID string, query models.ActivityQuery) ([]*models.ActivityEvent, error)
	Get(ctx context.Context, userID, eventID string) (*models.ActivityEvent, error)
	Update(ctx context.Context, userID, eventID string, input UpdateActivityInput) (*models.ActivityEvent, error)
	Delete(ctx context.Context, userID, eventID string) error
	Stats(ctx context.Context, userID string, date time.Time) (*ActivityStats, error)
	CleanupOldEvents(ctx context.Context, daysToKeep int) (int64, error)
}

// PresenceUpdate carries a status change. Nil fields keep their stored
// values; a nil LastActivity defaults to the time of the call.
type PresenceUpdate struct {
	Status        models.PresenceState `json:"status"`
	LastActivity  *time.Time           `json:"last_activity,omitempty"`
	CurrentApp    *string              `json:"current_app,omitempty"`
	CurrentWindow *string              `json:"current_window,omitempty"`
}

// PresenceService maintains the one-row-per-user presence projection
type PresenceService interface {
	GetStatus(ctx context.Context, userID string) (*models.PresenceStatus, error)
	SetStatus(ctx context.Context, userID string, update PresenceUpdate) (*models.PresenceStatus, error)
	ListActive(ctx context.Context) ([]*models.ActiveUserStatus, error)
}
