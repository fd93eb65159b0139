package models

import "time"

// NoticeMaxLen is the maximum notice length in runes.
const NoticeMaxLen = 140

// Notice is a single short text post. Tags, Groups and InReplyTo are derived
// from the text at commit time: #name attaches a tag, !name attaches an
// existing group, @user attaches the mentioned user's last notice as a reply
// target. IsRestricted is always recomputed from the attached groups (true
// iff there is at least one group and every one of them is closed) and never
// mutated independently.
type Notice struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Posted         time.Time `gorm:"not null;index" json:"posted"`
	AuthorID       uint      `gorm:"not null;index" json:"author_id"`
	Author         *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Text           string    `gorm:"size:140;not null" json:"text"`
	ViaID          uint      `gorm:"not null;index" json:"via_id"`
	Via            *Device   `gorm:"foreignKey:ViaID" json:"via,omitempty"`
	InReplyTo      []Notice  `gorm:"many2many:notice_replies;joinForeignKey:NoticeID;joinReferences:ReplyToID" json:"in_reply_to,omitempty"`
	Tags           []Tag     `gorm:"many2many:notice_tags" json:"tags,omitempty"`
	Groups         []Group   `gorm:"many2many:notice_groups" json:"groups,omitempty"`
	IsRestricted   bool      `gorm:"not null;default:false;index" json:"is_restricted"`
	FavoritedCount uint      `gorm:"not null;default:0" json:"favorited_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
