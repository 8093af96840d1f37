package bootstrap

import (
	"context"
	"fmt"
	"testing"
	"time"

	dbpkg "github.com/charana-seva/charana-backend/internal/db"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/security"
	"gorm.io/gorm"
)

var testDefaults = Defaults{Username: "admin", Password: "Jagannath@123", FullName: "Administrator"}

func openBootstrapTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:bootstrap_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := dbpkg.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func TestEnsureMasterAdminCreatesDefaultAccount(t *testing.T) {
	conn := openBootstrapTestDB(t)

	if errEnsure := EnsureMasterAdmin(context.Background(), conn, testDefaults); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}

	var admin models.AdminUser
	if errFind := conn.Where("username = ?", "admin").First(&admin).Error; errFind != nil {
		t.Fatalf("find bootstrap admin: %v", errFind)
	}
	if admin.Role != models.RoleMasterAdmin {
		t.Fatalf("expected master admin, got %q", admin.Role)
	}
	if !admin.Active {
		t.Fatal("expected active account")
	}
	if !security.CheckPassword(admin.PasswordHash, "Jagannath@123") {
		t.Fatal("bootstrap password does not verify")
	}
	keys := permission.Parse(admin.Permissions)
	for _, key := range permission.All() {
		if !permission.Has(keys, key) {
			t.Fatalf("bootstrap admin missing capability %s", key)
		}
	}
}

func TestEnsureMasterAdminIsIdempotent(t *testing.T) {
	conn := openBootstrapTestDB(t)
	ctx := context.Background()

	if errEnsure := EnsureMasterAdmin(ctx, conn, testDefaults); errEnsure != nil {
		t.Fatalf("first ensure: %v", errEnsure)
	}
	if errEnsure := EnsureMasterAdmin(ctx, conn, testDefaults); errEnsure != nil {
		t.Fatalf("second ensure: %v", errEnsure)
	}

	var count int64
	if errCount := conn.Model(&models.AdminUser{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 account, got %d", count)
	}
}

func TestEnsureMasterAdminPromotesEarliestAdmin(t *testing.T) {
	conn := openBootstrapTestDB(t)
	ctx := context.Background()

	first := models.AdminUser{Username: "first", PasswordHash: "x", FullName: "First", Role: models.RoleAdmin}
	second := models.AdminUser{Username: "second", PasswordHash: "x", FullName: "Second", Role: models.RoleAdmin, Active: true}
	if errCreate := conn.Create(&first).Error; errCreate != nil {
		t.Fatalf("create first: %v", errCreate)
	}
	if errUpdate := conn.Model(&first).Update("active", false).Error; errUpdate != nil {
		t.Fatalf("deactivate first: %v", errUpdate)
	}
	if errCreate := conn.Create(&second).Error; errCreate != nil {
		t.Fatalf("create second: %v", errCreate)
	}

	if errEnsure := EnsureMasterAdmin(ctx, conn, testDefaults); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}

	var promoted models.AdminUser
	if errFind := conn.First(&promoted, first.ID).Error; errFind != nil {
		t.Fatalf("find promoted: %v", errFind)
	}
	if promoted.Role != models.RoleMasterAdmin {
		t.Fatalf("expected earliest admin promoted, got role %q", promoted.Role)
	}
	if !promoted.Active {
		t.Fatal("promotion must reactivate the account")
	}

	var untouched models.AdminUser
	if errFind := conn.First(&untouched, second.ID).Error; errFind != nil {
		t.Fatalf("find second: %v", errFind)
	}
	if untouched.Role != models.RoleAdmin {
		t.Fatalf("second admin must stay regular, got %q", untouched.Role)
	}

	// No extra default account was created.
	var count int64
	if errCount := conn.Model(&models.AdminUser{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 2 {
		t.Fatalf("expected 2 accounts, got %d", count)
	}
}
