package models

import "time"

// File is the metadata row for one uploaded blob. Filename is the generated
// physical key (unique within the owner's blob namespace); OriginalName is
// the display name. Size must equal the blob length at creation time.
type File struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	FolderID      *uint     `gorm:"index" json:"folder_id"`
	Filename      string    `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalName  string    `gorm:"type:varchar(255);not null" json:"original_name"`
	MimeType      string    `gorm:"type:varchar(100)" json:"mime_type"`
	Size          int64     `gorm:"not null" json:"size"`
	Path          string    `gorm:"type:varchar(1000);not null" json:"path"`
	ThumbnailPath string    `gorm:"type:varchar(1000)" json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
