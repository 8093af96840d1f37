package admin

import (
	"net/http"

	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler serves aggregate counts for the admin console landing
// page.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns total and active counts per managed entity.
func (h *DashboardHandler) Stats(c *gin.Context) {
	entities := []struct {
		name  string
		model any
	}{
		{"notifications", &models.Notification{}},
		{"events", &models.Event{}},
		{"gallery", &models.GalleryImage{}},
		{"pdfs", &models.PDFDocument{}},
		{"admin_users", &models.AdminUser{}},
	}

	ctx := c.Request.Context()
	stats := gin.H{}
	for _, entity := range entities {
		var total, active int64
		if errCount := h.db.WithContext(ctx).Model(entity.model).Count(&total).Error; errCount != nil {
			fail(c, http.StatusInternalServerError, "Dashboard stats failed")
			return
		}
		if errCount := h.db.WithContext(ctx).Model(entity.model).Where("active = ?", true).Count(&active).Error; errCount != nil {
			fail(c, http.StatusInternalServerError, "Dashboard stats failed")
			return
		}
		stats[entity.name] = gin.H{"total": total, "active": active}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
