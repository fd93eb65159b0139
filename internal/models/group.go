package models

import "time"

// Group is a named community that notices can be addressed to with !name.
// Closed groups gate visibility: a notice addressed only to closed groups is
// restricted to their members.
type Group struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:140;not null;uniqueIndex" json:"name"`
	IsClosed     bool      `gorm:"not null;default:false" json:"is_closed"`
	OwnerID      uint      `gorm:"not null;index" json:"owner_id"`
	Owner        *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	UsersCount   uint      `gorm:"not null;default:0" json:"users_count"`
	NoticesCount uint      `gorm:"not null;default:0" json:"notices_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GroupMember maps users to groups. Membership changes recompute the group's
// denormalized UsersCount.
type GroupMember struct {
	GroupID   uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	Group     *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (GroupMember) TableName() string {
	return "group_members"
}
