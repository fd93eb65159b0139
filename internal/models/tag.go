package models

import "time"

// Tag is a hashtag extracted from notice text. Tags are created lazily the
// first time a name appears; UseCount is bumped once per notice per distinct
// tag, via a single-statement atomic increment.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:140;not null;uniqueIndex" json:"name"`
	UseCount  uint      `gorm:"not null;default:0" json:"use_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
