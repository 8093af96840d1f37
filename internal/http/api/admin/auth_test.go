package admin

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/security"
	"github.com/gin-gonic/gin"
)

func TestLoginBootstrapAdminAndVerify(t *testing.T) {
	conn, router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": testMasterUsername,
		"password": testMasterPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
			Password string `json:"password"`
			Hash     string `json:"password_hash"`
		} `json:"user"`
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &resp); errDecode != nil {
		t.Fatalf("decode login: %v", errDecode)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("unexpected login body %s", w.Body.String())
	}
	if resp.User.Username != testMasterUsername || resp.User.Role != models.RoleMasterAdmin {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if resp.User.Password != "" || resp.User.Hash != "" {
		t.Fatal("credential material leaked in login response")
	}

	wVerify := doJSON(t, router, http.MethodGet, "/api/auth/verify", resp.Token, nil)
	if wVerify.Code != http.StatusOK {
		t.Fatalf("verify: status %d body=%s", wVerify.Code, wVerify.Body.String())
	}
	var verifyResp struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if errDecode := json.Unmarshal(wVerify.Body.Bytes(), &verifyResp); errDecode != nil {
		t.Fatalf("decode verify: %v", errDecode)
	}
	if verifyResp.User.Username != testMasterUsername {
		t.Fatalf("verify round-trip mismatch: %q", verifyResp.User.Username)
	}

	if got := countAuditRows(t, conn, audit.ActionLoginSuccess, "admin_user"); got != 1 {
		t.Fatalf("expected 1 login audit row, got %d", got)
	}
}

func TestLoginRejectsUnknownUserAndWrongPasswordAlike(t *testing.T) {
	_, router := newTestServer(t)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": testMasterUsername,
		"password": "wrong",
	})
	unknownUser := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "nobody",
		"password": "whatever",
	})

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownUser.Code)
	}
	if errorBody(t, wrongPassword) != errorBody(t, unknownUser) {
		t.Fatal("error messages must not distinguish unknown users from wrong passwords")
	}
}

func TestLoginMissingFields(t *testing.T) {
	_, router := newTestServer(t)
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginRateLimitedAfterFiveFailures(t *testing.T) {
	_, router := newTestServer(t)

	for i := 0; i < 5; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": testMasterUsername,
			"password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	// Sixth attempt is refused even with the correct password.
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": testMasterUsername,
		"password": testMasterPassword,
	})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d body=%s", w.Code, w.Body.String())
	}
}

func TestLoginSuccessClearsFailureBudget(t *testing.T) {
	_, router := newTestServer(t)

	for i := 0; i < 4; i++ {
		doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": testMasterUsername,
			"password": "wrong",
		})
	}
	loginAs(t, router, testMasterUsername, testMasterPassword)

	// The budget is reset: four more failures stay under the threshold.
	for i := 0; i < 4; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"username": testMasterUsername,
			"password": "wrong",
		})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d after reset: expected 401, got %d", i+1, w.Code)
		}
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	conn, router := newTestServer(t)
	createTestAdmin(t, conn, "dormant", "secret-1", nil, false)

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "dormant",
		"password": "secret-1",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deactivated account, got %d", w.Code)
	}

	// Deactivation wins over a wrong password too.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "dormant",
		"password": "wrong",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before password check, got %d", w.Code)
	}
}

func TestVerifyRevokedBeforeTokenExpiry(t *testing.T) {
	conn, router := newTestServer(t)
	token := loginAs(t, router, testMasterUsername, testMasterPassword)

	if errUpdate := conn.Model(&models.AdminUser{}).
		Where("username = ?", testMasterUsername).
		Update("active", false).Error; errUpdate != nil {
		t.Fatalf("deactivate: %v", errUpdate)
	}

	w := doJSON(t, router, http.MethodGet, "/api/auth/verify", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for revoked account, got %d", w.Code)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	conn, router := newTestServer(t)

	var admin models.AdminUser
	if errFind := conn.Where("username = ?", testMasterUsername).First(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	expired, errGenerate := security.GenerateAdminToken(testJWTSecret, admin.ID, admin.Username, admin.Role, nil, -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}

	w := doJSON(t, router, http.MethodGet, "/api/auth/verify", expired, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	_, router := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/api/auth/verify", "garbage", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", w.Code)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	_, router := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/api/auth/verify", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	conn, router := newTestServer(t)
	token := loginAs(t, router, testMasterUsername, testMasterPassword)

	wrong := doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"currentPassword": "wrong",
		"newPassword":     "NewSecret@1",
	})
	if wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong current password, got %d", wrong.Code)
	}

	short := doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"currentPassword": testMasterPassword,
		"newPassword":     "abc",
	})
	if short.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", short.Code)
	}

	ok := doJSON(t, router, http.MethodPost, "/api/auth/change-password", token, gin.H{
		"currentPassword": testMasterPassword,
		"newPassword":     "NewSecret@1",
	})
	if ok.Code != http.StatusOK {
		t.Fatalf("change password: status %d body=%s", ok.Code, ok.Body.String())
	}

	old := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": testMasterUsername,
		"password": testMasterPassword,
	})
	if old.Code != http.StatusUnauthorized {
		t.Fatalf("old password still works: %d", old.Code)
	}
	loginAs(t, router, testMasterUsername, "NewSecret@1")

	if got := countAuditRows(t, conn, audit.ActionChangePassword, "admin_user"); got != 1 {
		t.Fatalf("expected 1 change-password audit row, got %d", got)
	}
}

func TestLogoutWritesAuditEntry(t *testing.T) {
	conn, router := newTestServer(t)
	token := loginAs(t, router, testMasterUsername, testMasterPassword)

	w := doJSON(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if got := countAuditRows(t, conn, audit.ActionLogout, "admin_user"); got != 1 {
		t.Fatalf("expected 1 logout audit row, got %d", got)
	}

	// Logout does not invalidate the token server-side.
	wVerify := doJSON(t, router, http.MethodGet, "/api/auth/verify", token, nil)
	if wVerify.Code != http.StatusOK {
		t.Fatalf("verify after logout: status %d", wVerify.Code)
	}
}
