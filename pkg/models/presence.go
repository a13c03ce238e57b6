package models

import "time"

// PresenceState is a user's coarse availability.
type PresenceState string

const (
	StateActive  PresenceState = "ACTIVE"
	StateIdle    PresenceState = "IDLE"
	StateOffline PresenceState = "OFFLINE"
)

// Valid reports whether s is one of the known presence states.
func (s PresenceState) Valid() bool {
	switch s {
	case StateActive, StateIdle, StateOffline:
		return true
	}
	return false
}

// PresenceStatus is the single current-state row per user. It is a
// continuously overwritten projection of the activity stream: no history,
// only the latest known state. Rows are created lazily (seeded OFFLINE) and
// never deleted.
type PresenceStatus struct {
	UserID        string        `gorm:"primaryKey;column:user_id;type:varchar(36)" json:"user_id"`
	CurrentStatus PresenceState `gorm:"column:current_status;type:varchar(20);not null;default:OFFLINE;index" json:"current_status"`
	LastActivity  time.Time     `gorm:"column:last_activity;not null;index" json:"last_activity"`
	CurrentApp    string        `gorm:"column:current_app;type:varchar(255)" json:"current_app,omitempty"`
	CurrentWindow string        `gorm:"column:current_window;type:varchar(500)" json:"current_window,omitempty"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (PresenceStatus) TableName() string {
	return "presence_statuses"
}

// UserProfile is the minimal public slice of a user joined into active-user
// listings.
type UserProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ActiveUserStatus is a presence row joined with its owner's public profile.
type ActiveUserStatus struct {
	UserID        string        `json:"user_id"`
	CurrentStatus PresenceState `json:"current_status"`
	LastActivity  time.Time     `json:"last_activity"`
	CurrentApp    string        `json:"current_app,omitempty"`
	CurrentWindow string        `json:"current_window,omitempty"`
	User          UserProfile   `json:"user"`
}
