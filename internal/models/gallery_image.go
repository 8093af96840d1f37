package models

import "time"

// GalleryImage is a photo gallery entry. File storage lives outside this
// service; only the paths and view counters are tracked here.
type GalleryImage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title   string `gorm:"type:text;not null"` // Image title.
	TitleEn string `gorm:"type:text"`          // English title.

	ImagePath     string `gorm:"type:text;not null"` // Relative path to the full-size image.
	ThumbnailPath string `gorm:"type:text"`          // Relative path to the thumbnail.

	Active       bool `gorm:"not null;default:true"` // Hidden from the public gallery when false.
	DisplayOrder int  `gorm:"not null;default:0"`    // Ascending sort key.

	AccessCount  int64      `gorm:"not null;default:0"` // Number of single-image fetches.
	LastAccessed *time.Time ``                          // Time of the most recent fetch.

	UploadedAt time.Time `gorm:"not null;autoCreateTime"` // Upload timestamp.
	UploadedBy *uint64   ``                               // Admin who uploaded the image.
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	UpdatedBy  *uint64   ``                               // Admin who last updated the entry.
}

// TableName keeps the table name used by the original schema.
func (GalleryImage) TableName() string {
	return "gallery_images"
}
