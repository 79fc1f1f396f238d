package models

import "time"

// ShareLink grants anonymous, read-only access to one file through an
// opaque token. A link is usable only while IsActive is true and ExpiresAt
// (when set) is in the future; expiry is computed at read time, never
// written back. Deactivation is terminal.
type ShareLink struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    uint       `gorm:"not null;index" json:"file_id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Token     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (ShareLink) TableName() string {
	return "share_links"
}
