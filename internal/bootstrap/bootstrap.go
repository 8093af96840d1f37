// Package bootstrap guarantees the system is never left without a master
// administrator account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Defaults describes the account created on an empty database.
type Defaults struct {
	Username string
	Password string
	FullName string
}

// EnsureMasterAdmin makes sure at least one master admin exists. On a
// database that already has a master admin it does nothing. If admin rows
// exist but none is a master, the earliest-created one is promoted. On an
// empty table a fresh master admin is created from defaults.
func EnsureMasterAdmin(ctx context.Context, conn *gorm.DB, defaults Defaults) error {
	var master models.AdminUser
	errFind := conn.WithContext(ctx).
		Where("role = ?", models.RoleMasterAdmin).
		Order("id ASC").
		First(&master).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up master admin: %w", errFind)
	}

	var earliest models.AdminUser
	errFind = conn.WithContext(ctx).Order("id ASC").First(&earliest).Error
	if errFind == nil {
		return promote(ctx, conn, &earliest)
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin accounts: %w", errFind)
	}
	return create(ctx, conn, defaults)
}

// promote upgrades an existing account to master admin with every capability.
func promote(ctx context.Context, conn *gorm.DB, admin *models.AdminUser) error {
	perms, errMarshal := permission.Marshal(permission.All())
	if errMarshal != nil {
		return fmt.Errorf("marshal permissions: %w", errMarshal)
	}
	updates := map[string]any{
		"role":        models.RoleMasterAdmin,
		"permissions": perms,
		"active":      true,
	}
	if errUpdate := conn.WithContext(ctx).Model(admin).Updates(updates).Error; errUpdate != nil {
		return fmt.Errorf("promote admin %q: %w", admin.Username, errUpdate)
	}
	log.Warnf("bootstrap: promoted existing admin %q to master admin", admin.Username)
	return nil
}

// create inserts the default master admin on an empty table.
func create(ctx context.Context, conn *gorm.DB, defaults Defaults) error {
	hash, errHash := security.HashPassword(defaults.Password)
	if errHash != nil {
		return fmt.Errorf("hash bootstrap password: %w", errHash)
	}
	perms, errMarshal := permission.Marshal(permission.All())
	if errMarshal != nil {
		return fmt.Errorf("marshal permissions: %w", errMarshal)
	}
	admin := models.AdminUser{
		Username:     defaults.Username,
		PasswordHash: hash,
		FullName:     defaults.FullName,
		Role:         models.RoleMasterAdmin,
		Permissions:  perms,
		Active:       true,
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create bootstrap admin: %w", errCreate)
	}
	log.Warnf("bootstrap: created master admin %q with the default password, change it immediately", defaults.Username)
	return nil
}
