package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only record of a state-changing action.
// Rows are only ever inserted; nothing in the application updates or
// deletes them.
type ActivityLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID *uint64 `gorm:"index"` // Acting admin; nil for system actions.

	Action     string  `gorm:"type:text;not null;index:idx_activity_entity_action"`                           // Action tag, e.g. LOGIN_SUCCESS.
	EntityType string  `gorm:"type:text;not null;index:idx_activity_entity_action;index:idx_activity_entity"` // Affected table or domain entity.
	EntityID   *uint64 `gorm:"index:idx_activity_entity"`                                                     // Affected row; nil when not applicable.

	OldValues datatypes.JSON `gorm:"type:jsonb"` // Snapshot before the change, nil for creates.
	NewValues datatypes.JSON `gorm:"type:jsonb"` // Snapshot after the change, nil for deletes.

	IPAddress string `gorm:"type:text"` // Client address, forwarded-for preferred.
	UserAgent string `gorm:"type:text"` // Client user agent.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Insertion timestamp.
}

// TableName keeps the table name used by the original schema.
func (ActivityLog) TableName() string {
	return "activity_log"
}
