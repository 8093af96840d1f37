package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/ratelimit"
	"github.com/charana-seva/charana-backend/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
	jwtExpiry time.Duration
	limiter   *ratelimit.LoginLimiter
	audit     *audit.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtSecret string, jwtExpiry time.Duration, limiter *ratelimit.LoginLimiter, auditLogger *audit.Logger) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, jwtExpiry: jwtExpiry, limiter: limiter, audit: auditLogger}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and issues a JWT. Unknown usernames and wrong
// passwords answer identically so the endpoint cannot be used to enumerate
// accounts, and both count against the per-(IP, username) failure budget.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	meta := audit.MetaFromRequest(c.Request)
	limitKey := ratelimit.Key(meta.IPAddress, username)
	ctx := c.Request.Context()
	if h.limiter.IsBlocked(ctx, limitKey) {
		fail(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		return
	}

	var admin models.AdminUser
	errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			h.limiter.RecordFailure(ctx, limitKey)
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if !admin.Active {
		fail(c, http.StatusForbidden, "Account is deactivated")
		return
	}

	if !security.CheckPassword(admin.PasswordHash, password) {
		h.limiter.RecordFailure(ctx, limitKey)
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.limiter.Clear(ctx, limitKey)

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(ctx).Model(&admin).Update("last_login", now).Error; errUpdate == nil {
		admin.LastLogin = &now
	}

	token, errToken := security.GenerateAdminToken(h.jwtSecret, admin.ID, admin.Username, admin.Role, permission.Parse(admin.Permissions), h.jwtExpiry)
	if errToken != nil {
		fail(c, http.StatusInternalServerError, "Login failed")
		return
	}

	h.audit.Log(ctx, audit.Entry{
		ActorID:    &admin.ID,
		Action:     audit.ActionLoginSuccess,
		EntityType: "admin_user",
		EntityID:   &admin.ID,
		Meta:       meta,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    sanitizeAdmin(&admin),
	})
}

// Verify returns the live account behind a valid token.
func (h *AuthHandler) Verify(c *gin.Context) {
	admin, ok := adminFromContext(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": sanitizeAdmin(admin)})
}

// changePasswordRequest defines the request body for self-service password
// changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the caller's own password after re-verifying the
// current one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	admin, ok := adminFromContext(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Current and new passwords are required")
		return
	}
	current := strings.TrimSpace(body.CurrentPassword)
	next := strings.TrimSpace(body.NewPassword)
	if current == "" || next == "" {
		fail(c, http.StatusBadRequest, "Current and new passwords are required")
		return
	}
	if errValidate := security.ValidatePassword(next); errValidate != nil {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if !security.CheckPassword(admin.PasswordHash, current) {
		fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	hash, errHash := security.HashPassword(next)
	if errHash != nil {
		fail(c, http.StatusInternalServerError, "Change password failed")
		return
	}
	ctx := c.Request.Context()
	if errUpdate := h.db.WithContext(ctx).Model(admin).Update("password_hash", hash).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Change password failed")
		return
	}

	h.audit.Log(ctx, audit.Entry{
		ActorID:    &admin.ID,
		Action:     audit.ActionChangePassword,
		EntityType: "admin_user",
		EntityID:   &admin.ID,
		Meta:       audit.MetaFromRequest(c.Request),
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}

// Logout records the logout for the audit trail. Tokens stay valid until
// expiry; clients discard them.
func (h *AuthHandler) Logout(c *gin.Context) {
	admin, ok := adminFromContext(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    &admin.ID,
		Action:     audit.ActionLogout,
		EntityType: "admin_user",
		EntityID:   &admin.ID,
		Meta:       audit.MetaFromRequest(c.Request),
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}
