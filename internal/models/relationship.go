package models

import "time"

// Follow is a directed edge: Follower reads Followed's notices. Unique per
// ordered pair.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;index:idx_follow_pair,unique;index" json:"follower_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowedID uint      `gorm:"not null;index:idx_follow_pair,unique" json:"followed_id"`
	Followed   *User     `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Block is a directed edge: Blocker refuses follows from Blocked. Creating a
// block revokes any follow edge Blocked -> Blocker. Unique per ordered pair.
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;index:idx_block_pair,unique;index" json:"blocker_id"`
	Blocker   *User     `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	BlockedID uint      `gorm:"not null;index:idx_block_pair,unique" json:"blocked_id"`
	Blocked   *User     `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
