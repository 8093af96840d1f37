package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin roles. Exactly one master_admin account is expected per deployment;
// it implicitly holds every permission and may only be modified by itself.
const (
	RoleMasterAdmin = "master_admin"
	RoleAdmin       = "admin"
)

// AdminUser represents an administrator account stored in the database.
type AdminUser struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username     string `gorm:"type:text;not null;uniqueIndex"` // Unique login name, immutable after creation.
	PasswordHash string `gorm:"type:text;not null"`             // bcrypt hash, never serialized to clients.

	FullName string `gorm:"type:text"` // Display name.
	MobileNo string `gorm:"type:text"` // Contact number.
	Address  string `gorm:"type:text"` // Postal address.

	Role        string         `gorm:"type:text;not null;default:'admin'"` // master_admin or admin.
	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`   // Permission keys in JSON.

	Active bool `gorm:"not null;default:true"` // Soft-delete flag; inactive admins cannot sign in.

	CreatedAt time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	LastLogin *time.Time `gorm:"type:datetime"`           // Last successful login, nil until first login.
}

// TableName keeps the table name used by the original schema.
func (AdminUser) TableName() string {
	return "admin_users"
}

// IsMasterAdmin reports whether the account holds the master admin role.
func (u *AdminUser) IsMasterAdmin() bool {
	return u.Role == RoleMasterAdmin
}
