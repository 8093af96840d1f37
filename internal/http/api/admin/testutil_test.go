package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/bootstrap"
	dbpkg "github.com/charana-seva/charana-backend/internal/db"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/ratelimit"
	"github.com/charana-seva/charana-backend/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	testJWTSecret      = "test-secret"
	testMasterUsername = "admin"
	testMasterPassword = "Jagannath@123"
)

// newTestServer boots an in-memory database with a bootstrapped master admin
// and the full admin route tree.
func newTestServer(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_api_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := dbpkg.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	if errBootstrap := bootstrap.EnsureMasterAdmin(context.Background(), conn, bootstrap.Defaults{
		Username: testMasterUsername,
		Password: testMasterPassword,
		FullName: "Administrator",
	}); errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}

	router := gin.New()
	Register(router, Dependencies{
		DB:        conn,
		JWTSecret: testJWTSecret,
		JWTExpiry: time.Hour,
		Limiter:   ratelimit.NewLoginLimiter(ratelimit.NewMemoryStore()),
		Audit:     audit.NewLogger(conn, false),
	})
	return conn, router
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// loginAs logs a user in and returns the issued token.
func loginAs(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode login response: %v", errDecode)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	return resp.Token
}

// createTestAdmin inserts an account directly, bypassing the API.
func createTestAdmin(t *testing.T, conn *gorm.DB, username, password string, keys []string, active bool) models.AdminUser {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	perms, errMarshal := permission.Marshal(permission.Normalize(keys))
	if errMarshal != nil {
		t.Fatalf("marshal permissions: %v", errMarshal)
	}
	admin := models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         models.RoleAdmin,
		Permissions:  perms,
		Active:       active,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin %s: %v", username, errCreate)
	}
	// The column defaults to true, so a deactivated fixture needs an
	// explicit update.
	if !active {
		if errUpdate := conn.Model(&admin).Update("active", false).Error; errUpdate != nil {
			t.Fatalf("deactivate admin %s: %v", username, errUpdate)
		}
	}
	return admin
}

// countAuditRows counts activity rows matching an action and entity type.
func countAuditRows(t *testing.T, conn *gorm.DB, action, entityType string) int64 {
	t.Helper()
	var count int64
	errCount := conn.Model(&models.ActivityLog{}).
		Where("action = ? AND entity_type = ?", action, entityType).
		Count(&count).Error
	if errCount != nil {
		t.Fatalf("count audit rows: %v", errCount)
	}
	return count
}

// errorBody decodes the uniform error response.
func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode error body: %v body=%s", errDecode, w.Body.String())
	}
	if resp.Success {
		t.Fatalf("expected success=false, body=%s", w.Body.String())
	}
	return resp.Error
}
