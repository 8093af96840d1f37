// Package public serves the unauthenticated read API consumed by the
// website. Only active rows are visible here.
package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the public content endpoints.
type Handler struct {
	db *gorm.DB
}

// NewHandler constructs a Handler.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Register mounts the public routes.
func Register(router *gin.Engine, db *gorm.DB) {
	h := NewHandler(db)
	api := router.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/:id", h.GetNotification)
	api.GET("/events", h.ListEvents)
	api.GET("/events/:id", h.GetEvent)
	api.GET("/gallery", h.ListGallery)
	api.GET("/gallery/:id", h.GetGalleryImage)
	api.GET("/pdfs", h.ListPDFs)
	api.GET("/pdfs/:id", h.GetPDF)
}

// Health reports service liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}

// ListNotifications returns active notices in display order.
func (h *Handler) ListNotifications(c *gin.Context) {
	var rows []models.Notification
	if errFind := h.activeQuery(c).Find(&rows).Error; errFind != nil {
		failQuery(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": rows})
}

// GetNotification returns one active notice.
func (h *Handler) GetNotification(c *gin.Context) {
	var row models.Notification
	if !h.findActive(c, &row, "Notification not found") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": row})
}

// ListEvents returns active events in display order.
func (h *Handler) ListEvents(c *gin.Context) {
	var rows []models.Event
	if errFind := h.activeQuery(c).Find(&rows).Error; errFind != nil {
		failQuery(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": rows})
}

// GetEvent returns one active event.
func (h *Handler) GetEvent(c *gin.Context) {
	var row models.Event
	if !h.findActive(c, &row, "Event not found") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "event": row})
}

// ListGallery returns active gallery entries in display order.
func (h *Handler) ListGallery(c *gin.Context) {
	var rows []models.GalleryImage
	if errFind := h.activeQuery(c).Find(&rows).Error; errFind != nil {
		failQuery(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "images": rows})
}

// GetGalleryImage returns one active gallery entry and counts the view.
func (h *Handler) GetGalleryImage(c *gin.Context) {
	var row models.GalleryImage
	if !h.findActive(c, &row, "Gallery image not found") {
		return
	}

	// View counting is best-effort; a failed bump never hides the image.
	now := time.Now().UTC()
	updates := map[string]any{
		"access_count":  gorm.Expr("access_count + 1"),
		"last_accessed": now,
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&row).Updates(updates).Error; errUpdate == nil {
		row.AccessCount++
		row.LastAccessed = &now
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "image": row})
}

// ListPDFs returns active document entries in display order.
func (h *Handler) ListPDFs(c *gin.Context) {
	var rows []models.PDFDocument
	if errFind := h.activeQuery(c).Find(&rows).Error; errFind != nil {
		failQuery(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pdfs": rows})
}

// GetPDF returns one active document entry.
func (h *Handler) GetPDF(c *gin.Context) {
	var row models.PDFDocument
	if !h.findActive(c, &row, "Document not found") {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pdf": row})
}

// activeQuery scopes a list query to active rows in display order.
func (h *Handler) activeQuery(c *gin.Context) *gorm.DB {
	return h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Order("display_order ASC, id ASC")
}

// findActive loads one active row by the :id route parameter, answering the
// request itself on failure.
func (h *Handler) findActive(c *gin.Context, dest any, notFoundMsg string) bool {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid id"})
		return false
	}
	errFind := h.db.WithContext(c.Request.Context()).
		Where("active = ?", true).
		First(dest, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundMsg})
			return false
		}
		failQuery(c)
		return false
	}
	return true
}

func failQuery(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Query failed"})
}
