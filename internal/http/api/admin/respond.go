package admin

import (
	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/gin-gonic/gin"
)

// fail writes the uniform error body.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// sanitizeAdmin shapes an account for API responses. The password hash never
// leaves the server.
func sanitizeAdmin(admin *models.AdminUser) gin.H {
	return gin.H{
		"id":          admin.ID,
		"username":    admin.Username,
		"full_name":   admin.FullName,
		"mobile_no":   admin.MobileNo,
		"address":     admin.Address,
		"role":        admin.Role,
		"permissions": permission.Parse(admin.Permissions),
		"is_active":   admin.Active,
		"created_at":  admin.CreatedAt,
		"last_login":  admin.LastLogin,
	}
}
