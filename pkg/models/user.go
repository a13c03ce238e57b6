package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user account
type User struct {
	ID           string         `gorm:"primaryKey;column:id" json:"id"`
	Username     string         `gorm:"column:username;type:varchar(100);unique;not null" json:"username"`
	PasswordHash string         `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	DisplayName  string         `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	AvatarURL    string         `gorm:"column:avatar_url;type:varchar(500)" json:"avatar_url,omitempty"`
	Status       string         `gorm:"column:status;type:varchar(50);default:active" json:"status"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Profile returns the public slice of the account.
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// Session represents an issued bearer token
type Session struct {
	ID        string         `gorm:"primaryKey;column:id" json:"id"`
	UserID    string         `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Token     string         `gorm:"column:token;type:varchar(500);not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time      `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}
