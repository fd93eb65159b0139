// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can post notices and follow others.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Info      *UserInfo      `gorm:"foreignKey:UserID" json:"info,omitempty"`
}

// UserInfo is the per-user extension row, created exactly once when the user
// is registered. LastNoticeID always points at the user's most recently
// committed notice and is updated inside the same transaction as the notice
// insert.
type UserInfo struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	LastNoticeID *uint     `json:"last_notice_id,omitempty"`
	LastNotice   *Notice   `gorm:"foreignKey:LastNoticeID" json:"last_notice,omitempty"`
	IsFeatured   bool      `gorm:"not null;default:false" json:"is_featured"`
	Favorites    []Notice  `gorm:"many2many:user_favorites" json:"favorites,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (UserInfo) TableName() string {
	return "user_infos"
}
