package models

import (
	"encoding/json"
	"time"
)

// EventKind is the closed enumeration of activity event types reported by
// tracking clients.
type EventKind string

const (
	KindApplicationFocus EventKind = "APPLICATION_FOCUS"
	KindWindowChange     EventKind = "WINDOW_CHANGE"
	KindIdleStart        EventKind = "IDLE_START"
	KindIdleEnd          EventKind = "IDLE_END"
	KindSystemLock       EventKind = "SYSTEM_LOCK"
	KindSystemUnlock     EventKind = "SYSTEM_UNLOCK"
)

// ActivityEvent is one immutable fact about what a user's device was doing at
// a point in time. History lives here; the current state lives in
// PresenceStatus.
//
// DurationSeconds is supplied by the client and is NOT derived from
// StartTime/EndTime. The two can legitimately disagree (clients may measure
// active time differently than wall-clock elapsed time).
type ActivityEvent struct {
	ID              string          `gorm:"primaryKey;column:id" json:"id"`
	UserID          string          `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Kind            EventKind       `gorm:"column:kind;type:varchar(50);not null;index" json:"kind"`
	ApplicationName string          `gorm:"column:application_name;type:varchar(255)" json:"application_name,omitempty"`
	WindowTitle     string          `gorm:"column:window_title;type:varchar(500)" json:"window_title,omitempty"`
	ProcessName     string          `gorm:"column:process_name;type:varchar(255)" json:"process_name,omitempty"`
	OperatingSystem string          `gorm:"column:operating_system;type:varchar(100)" json:"operating_system,omitempty"`
	DeviceName      string          `gorm:"column:device_name;type:varchar(255)" json:"device_name,omitempty"`
	IPAddress       string          `gorm:"column:ip_address;type:varchar(100)" json:"ip_address,omitempty"`
	UserAgent       string          `gorm:"column:user_agent;type:varchar(500)" json:"user_agent,omitempty"`
	StartTime       time.Time       `gorm:"column:start_time;not null;index" json:"start_time"`
	EndTime         *time.Time      `gorm:"column:end_time" json:"end_time,omitempty"`
	DurationSeconds *int64          `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Metadata        json.RawMessage `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}

// Duration returns the client-supplied duration, or 0 when absent.
func (e *ActivityEvent) Duration() int64 {
	if e.DurationSeconds == nil {
		return 0
	}
	return *e.DurationSeconds
}

// ActivityQuery bounds a paginated listing of a user's events.
type ActivityQuery struct {
	Limit     int
	Offset    int
	StartDate *time.Time
	EndDate   *time.Time
}
