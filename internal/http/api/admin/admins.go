package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminUsersHandler manages admin account endpoints. Routes using it sit
// behind requireMasterAdmin.
type AdminUsersHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

// NewAdminUsersHandler constructs an AdminUsersHandler.
func NewAdminUsersHandler(db *gorm.DB, auditLogger *audit.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{db: db, audit: auditLogger}
}

// List returns all admin accounts, newest first. Deactivated accounts are
// included; they still hold their usernames.
func (h *AdminUsersHandler) List(c *gin.Context) {
	var rows []models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).Order("created_at DESC").Find(&rows).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "List admin users failed")
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, sanitizeAdmin(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}

// Get returns a single admin account by ID.
func (h *AdminUsersHandler) Get(c *gin.Context) {
	admin, ok := h.findByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": sanitizeAdmin(admin)})
}

// createAdminRequest defines the request body for admin creation.
type createAdminRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	FullName    string   `json:"full_name"`
	MobileNo    string   `json:"mobile_no"`
	Address     string   `json:"address"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Create creates a new admin account.
func (h *AdminUsersHandler) Create(c *gin.Context) {
	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	fullName := strings.TrimSpace(body.FullName)
	if username == "" || password == "" || fullName == "" {
		fail(c, http.StatusBadRequest, "Username, password and full name are required")
		return
	}
	if errValidate := security.ValidatePassword(password); errValidate != nil {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	role := strings.TrimSpace(body.Role)
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleMasterAdmin {
		fail(c, http.StatusBadRequest, "Invalid role")
		return
	}

	keys := permission.Normalize(body.Permissions)
	if errValidate := permission.Validate(keys); errValidate != nil {
		fail(c, http.StatusBadRequest, "Invalid permissions")
		return
	}
	if role == models.RoleMasterAdmin {
		keys = permission.All()
	}
	perms, errMarshal := permission.Marshal(keys)
	if errMarshal != nil {
		fail(c, http.StatusInternalServerError, "Create admin failed")
		return
	}

	ctx := c.Request.Context()
	var count int64
	if errCount := h.db.WithContext(ctx).Model(&models.AdminUser{}).Where("username = ?", username).Count(&count).Error; errCount != nil {
		fail(c, http.StatusInternalServerError, "Create admin failed")
		return
	}
	if count > 0 {
		fail(c, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		fail(c, http.StatusInternalServerError, "Create admin failed")
		return
	}
	admin := models.AdminUser{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		MobileNo:     strings.TrimSpace(body.MobileNo),
		Address:      strings.TrimSpace(body.Address),
		Role:         role,
		Permissions:  perms,
		Active:       true,
	}
	if errCreate := h.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		fail(c, http.StatusInternalServerError, "Create admin failed")
		return
	}

	h.logChange(c, audit.ActionCreateAdmin, admin.ID, nil, snapshotAdmin(&admin))
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": sanitizeAdmin(&admin)})
}

// updateAdminRequest defines the typed patch for admin updates. Only fields
// present in the body change; each updatable column is enumerated here.
type updateAdminRequest struct {
	FullName    *string   `json:"full_name"`
	MobileNo    *string   `json:"mobile_no"`
	Address     *string   `json:"address"`
	Role        *string   `json:"role"`
	Permissions *[]string `json:"permissions"`
	Active      *bool     `json:"is_active"`
}

// Update applies a typed patch to an admin account. Master admin rows are
// protected: only the account itself may touch them, and never the role,
// permissions or active flag.
func (h *AdminUsersHandler) Update(c *gin.Context) {
	target, ok := h.findByParam(c)
	if !ok {
		return
	}
	actor, _ := adminFromContext(c)

	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if target.IsMasterAdmin() {
		if actor == nil || actor.ID != target.ID {
			fail(c, http.StatusForbidden, "Cannot modify master admin account")
			return
		}
		if body.Role != nil || body.Permissions != nil || body.Active != nil {
			fail(c, http.StatusForbidden, "Cannot change master admin role or status")
			return
		}
	}

	old := snapshotAdmin(target)
	updates := map[string]any{}
	if body.FullName != nil {
		fullName := strings.TrimSpace(*body.FullName)
		if fullName == "" {
			fail(c, http.StatusBadRequest, "Full name cannot be empty")
			return
		}
		updates["full_name"] = fullName
	}
	if body.MobileNo != nil {
		updates["mobile_no"] = strings.TrimSpace(*body.MobileNo)
	}
	if body.Address != nil {
		updates["address"] = strings.TrimSpace(*body.Address)
	}
	if body.Role != nil {
		role := strings.TrimSpace(*body.Role)
		if role != models.RoleAdmin && role != models.RoleMasterAdmin {
			fail(c, http.StatusBadRequest, "Invalid role")
			return
		}
		updates["role"] = role
	}
	if body.Permissions != nil {
		keys := permission.Normalize(*body.Permissions)
		if errValidate := permission.Validate(keys); errValidate != nil {
			fail(c, http.StatusBadRequest, "Invalid permissions")
			return
		}
		perms, errMarshal := permission.Marshal(keys)
		if errMarshal != nil {
			fail(c, http.StatusInternalServerError, "Update admin failed")
			return
		}
		updates["permissions"] = perms
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if len(updates) == 0 {
		fail(c, http.StatusBadRequest, "No updatable fields provided")
		return
	}

	ctx := c.Request.Context()
	if errUpdate := h.db.WithContext(ctx).Model(target).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Update admin failed")
		return
	}

	var updated models.AdminUser
	if errFind := h.db.WithContext(ctx).First(&updated, target.ID).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "Update admin failed")
		return
	}
	h.logChange(c, audit.ActionUpdateAdmin, updated.ID, old, snapshotAdmin(&updated))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": sanitizeAdmin(&updated)})
}

// resetPasswordRequest defines the request body for administrative password
// resets.
type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password for an account without knowing the old
// one. Master admin rows accept resets only from themselves.
func (h *AdminUsersHandler) ResetPassword(c *gin.Context) {
	target, ok := h.findByParam(c)
	if !ok {
		return
	}
	actor, _ := adminFromContext(c)
	if target.IsMasterAdmin() && (actor == nil || actor.ID != target.ID) {
		fail(c, http.StatusForbidden, "Cannot reset master admin password")
		return
	}

	var body resetPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "New password is required")
		return
	}
	next := strings.TrimSpace(body.NewPassword)
	if next == "" {
		fail(c, http.StatusBadRequest, "New password is required")
		return
	}
	if errValidate := security.ValidatePassword(next); errValidate != nil {
		fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	hash, errHash := security.HashPassword(next)
	if errHash != nil {
		fail(c, http.StatusInternalServerError, "Reset password failed")
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(target).Update("password_hash", hash).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Reset password failed")
		return
	}

	h.logChange(c, audit.ActionResetPassword, target.ID, nil, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

// Delete deactivates an admin account. The row and its username stay.
func (h *AdminUsersHandler) Delete(c *gin.Context) {
	target, ok := h.findByParam(c)
	if !ok {
		return
	}
	if target.IsMasterAdmin() {
		fail(c, http.StatusForbidden, "Cannot delete master admin account")
		return
	}

	old := snapshotAdmin(target)
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(target).Update("active", false).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Delete admin failed")
		return
	}

	h.logChange(c, audit.ActionDeleteAdmin, target.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin deactivated"})
}

// HardDelete permanently removes an admin account row. Master admin rows are
// never hard-deleted, not even by themselves.
func (h *AdminUsersHandler) HardDelete(c *gin.Context) {
	target, ok := h.findByParam(c)
	if !ok {
		return
	}
	if target.IsMasterAdmin() {
		fail(c, http.StatusForbidden, "Cannot delete master admin account")
		return
	}

	old := snapshotAdmin(target)
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(&models.AdminUser{}, target.ID).Error; errDelete != nil {
		fail(c, http.StatusInternalServerError, "Delete admin failed")
		return
	}

	h.logChange(c, audit.ActionHardDeleteAdmin, target.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Admin permanently deleted"})
}

// findByParam loads the admin row addressed by the :id route parameter,
// answering the request itself on failure.
func (h *AdminUsersHandler) findByParam(c *gin.Context) (*models.AdminUser, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	var admin models.AdminUser
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Admin user not found")
			return nil, false
		}
		fail(c, http.StatusInternalServerError, "Query failed")
		return nil, false
	}
	return &admin, true
}

// logChange writes one audit entry for an admin account mutation.
func (h *AdminUsersHandler) logChange(c *gin.Context, action string, targetID uint64, old, next any) {
	var actorID *uint64
	if actor, ok := adminFromContext(c); ok {
		actorID = &actor.ID
	}
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "admin_user",
		EntityID:   &targetID,
		Old:        old,
		New:        next,
		Meta:       audit.MetaFromRequest(c.Request),
	})
}

// snapshotAdmin captures the auditable fields of an account. Password hashes
// never enter the audit trail.
func snapshotAdmin(admin *models.AdminUser) map[string]any {
	return map[string]any{
		"username":    admin.Username,
		"full_name":   admin.FullName,
		"mobile_no":   admin.MobileNo,
		"address":     admin.Address,
		"role":        admin.Role,
		"permissions": permission.Parse(admin.Permissions),
		"is_active":   admin.Active,
	}
}
