// Package admin wires the authenticated administration API: authentication
// middleware, role and capability guards, and route registration.
package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charana-seva/charana-backend/internal/models"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys shared by the middleware chain and handlers.
const (
	ctxAdminKey   = "adminAccount"
	ctxAdminIDKey = "adminID"
)

// authMiddleware authenticates requests with a bearer token. The token
// carries a permission snapshot, but authorization never trusts it: the
// account row is re-fetched on every request so deactivation and permission
// edits take effect before the token expires.
func authMiddleware(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}

		claims, errParse := security.ParseAdminToken(jwtSecret, token)
		if errParse != nil {
			if errors.Is(errParse, security.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Invalid token"})
			return
		}

		var admin models.AdminUser
		errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error
		if errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Invalid token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Authentication failed"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Account is deactivated"})
			return
		}

		c.Set(ctxAdminKey, &admin)
		c.Set(ctxAdminIDKey, admin.ID)
		c.Next()
	}
}

// requireMasterAdmin restricts a route group to master admin accounts.
func requireMasterAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		if !admin.IsMasterAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Master admin access required"})
			return
		}
		c.Next()
	}
}

// requirePermission restricts a route group to accounts holding a capability.
// Master admins hold every capability implicitly.
func requirePermission(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := adminFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		if admin.IsMasterAdmin() {
			c.Next()
			return
		}
		if !permission.Has(permission.Parse(admin.Permissions), key) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Permission denied"})
			return
		}
		c.Next()
	}
}

// adminFromContext extracts the authenticated account set by authMiddleware.
func adminFromContext(c *gin.Context) (*models.AdminUser, bool) {
	value, ok := c.Get(ctxAdminKey)
	if !ok {
		return nil, false
	}
	admin, ok := value.(*models.AdminUser)
	return admin, ok
}
