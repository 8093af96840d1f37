package models

import "time"

// Event is a temple event announcement with bilingual fields.
// The primary fields carry Odia text; the *_en variants carry the
// English rendering when one exists.
type Event struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title   string `gorm:"type:text;not null"` // Event title.
	TitleEn string `gorm:"type:text"`          // English title.

	Date   string `gorm:"type:text;not null"` // Display date string.
	DateEn string `gorm:"type:text"`          // English date string.

	Time   string `gorm:"type:text;not null"` // Display time string.
	TimeEn string `gorm:"type:text"`          // English time string.

	Description   string `gorm:"type:text;not null"` // Event description.
	DescriptionEn string `gorm:"type:text"`          // English description.

	ImagePath string `gorm:"type:text"` // Relative path to the event banner image.

	Active       bool `gorm:"not null;default:true"` // Hidden from public listings when false.
	DisplayOrder int  `gorm:"not null;default:0"`    // Ascending sort key.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	CreatedBy *uint64   ``                               // Admin who created the event.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	UpdatedBy *uint64   ``                               // Admin who last updated the event.
}
