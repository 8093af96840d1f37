package models

import "time"

// Notification types shown on the public notice scroll.
const (
	NotificationTypeSeva     = "seva"
	NotificationTypeUpdate   = "update"
	NotificationTypeBhajan   = "bhajan"
	NotificationTypeSpecial  = "special"
	NotificationTypeFestival = "festival"
)

// NotificationTypes lists every accepted notification type.
var NotificationTypes = []string{
	NotificationTypeSeva,
	NotificationTypeUpdate,
	NotificationTypeBhajan,
	NotificationTypeSpecial,
	NotificationTypeFestival,
}

// Notification is a short public notice displayed on the site.
type Notification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Message string `gorm:"type:text;not null"` // Notice text, may contain Odia script.
	Type    string `gorm:"type:text;not null"` // One of NotificationTypes.

	Active       bool `gorm:"not null;default:true"` // Hidden from the public feed when false.
	DisplayOrder int  `gorm:"not null;default:0"`    // Ascending sort key for the feed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	CreatedBy *uint64   ``                               // Admin who created the notice.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
	UpdatedBy *uint64   ``                               // Admin who last updated the notice.
}

// ValidNotificationType reports whether t is an accepted notification type.
func ValidNotificationType(t string) bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}
