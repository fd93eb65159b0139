package models

import "time"

// Device is a named posting channel (e.g. "web"). Every notice records the
// device it was posted through. NoticesCount is denormalized and bumped with
// an atomic increment at commit time.
type Device struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:140;not null;uniqueIndex" json:"name"`
	URL          string    `json:"url"`
	NoticesCount uint      `gorm:"not null;default:0" json:"notices_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
