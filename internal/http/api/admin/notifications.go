package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationsHandler manages public notices. Routes sit behind
// requirePermission("notifications").
type NotificationsHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

// NewNotificationsHandler constructs a NotificationsHandler.
func NewNotificationsHandler(db *gorm.DB, auditLogger *audit.Logger) *NotificationsHandler {
	return &NotificationsHandler{db: db, audit: auditLogger}
}

// List returns all notices, inactive included, in display order.
func (h *NotificationsHandler) List(c *gin.Context) {
	var rows []models.Notification
	if errFind := h.db.WithContext(c.Request.Context()).Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "List notifications failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": rows})
}

// notificationRequest defines the request body for notice creation.
type notificationRequest struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	DisplayOrder int    `json:"display_order"`
}

// Create adds a new notice.
func (h *NotificationsHandler) Create(c *gin.Context) {
	var body notificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	message := strings.TrimSpace(body.Message)
	notificationType := strings.TrimSpace(body.Type)
	if message == "" {
		fail(c, http.StatusBadRequest, "Message is required")
		return
	}
	if !models.ValidNotificationType(notificationType) {
		fail(c, http.StatusBadRequest, "Invalid notification type")
		return
	}

	actorID := actorIDFromContext(c)
	row := models.Notification{
		Message:      message,
		Type:         notificationType,
		Active:       true,
		DisplayOrder: body.DisplayOrder,
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		fail(c, http.StatusInternalServerError, "Create notification failed")
		return
	}

	h.logChange(c, audit.ActionCreate, row.ID, nil, row)
	c.JSON(http.StatusCreated, gin.H{"success": true, "notification": row})
}

// updateNotificationRequest defines the typed patch for notice updates.
type updateNotificationRequest struct {
	Message      *string `json:"message"`
	Type         *string `json:"type"`
	Active       *bool   `json:"is_active"`
	DisplayOrder *int    `json:"display_order"`
}

// Update applies a typed patch to a notice.
func (h *NotificationsHandler) Update(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	var body updateNotificationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	old := *row
	updates := map[string]any{"updated_by": actorIDFromContext(c)}
	if body.Message != nil {
		message := strings.TrimSpace(*body.Message)
		if message == "" {
			fail(c, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		updates["message"] = message
	}
	if body.Type != nil {
		notificationType := strings.TrimSpace(*body.Type)
		if !models.ValidNotificationType(notificationType) {
			fail(c, http.StatusBadRequest, "Invalid notification type")
			return
		}
		updates["type"] = notificationType
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if body.DisplayOrder != nil {
		updates["display_order"] = *body.DisplayOrder
	}
	if len(updates) == 1 {
		fail(c, http.StatusBadRequest, "No updatable fields provided")
		return
	}

	ctx := c.Request.Context()
	if errUpdate := h.db.WithContext(ctx).Model(row).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Update notification failed")
		return
	}
	var updated models.Notification
	if errFind := h.db.WithContext(ctx).First(&updated, row.ID).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "Update notification failed")
		return
	}

	h.logChange(c, audit.ActionUpdate, updated.ID, old, updated)
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": updated})
}

// Delete hides a notice from the public feed.
func (h *NotificationsHandler) Delete(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	old := *row
	updates := map[string]any{"active": false, "updated_by": actorIDFromContext(c)}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Delete notification failed")
		return
	}

	h.logChange(c, audit.ActionDelete, row.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted"})
}

func (h *NotificationsHandler) findByParam(c *gin.Context) (*models.Notification, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	var row models.Notification
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Notification not found")
			return nil, false
		}
		fail(c, http.StatusInternalServerError, "Query failed")
		return nil, false
	}
	return &row, true
}

func (h *NotificationsHandler) logChange(c *gin.Context, action string, id uint64, old, next any) {
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    actorIDFromContext(c),
		Action:     action,
		EntityType: "notification",
		EntityID:   &id,
		Old:        old,
		New:        next,
		Meta:       audit.MetaFromRequest(c.Request),
	})
}

// actorIDFromContext returns the authenticated admin's ID, nil outside the
// authenticated chain.
func actorIDFromContext(c *gin.Context) *uint64 {
	admin, ok := adminFromContext(c)
	if !ok {
		return nil
	}
	return &admin.ID
}
