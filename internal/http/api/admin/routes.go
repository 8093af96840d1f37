package admin

import (
	"time"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/charana-seva/charana-backend/internal/permission"
	"github.com/charana-seva/charana-backend/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies carries everything the admin API needs.
type Dependencies struct {
	DB        *gorm.DB
	JWTSecret string
	JWTExpiry time.Duration
	Limiter   *ratelimit.LoginLimiter
	Audit     *audit.Logger
}

// Register mounts the authentication and administration routes.
func Register(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.DB, deps.JWTSecret, deps.JWTExpiry, deps.Limiter, deps.Audit)
	adminUsers := NewAdminUsersHandler(deps.DB, deps.Audit)
	activity := NewActivityHandler(deps.Audit)
	dashboard := NewDashboardHandler(deps.DB)
	notifications := NewNotificationsHandler(deps.DB, deps.Audit)
	events := NewEventsHandler(deps.DB, deps.Audit)
	gallery := NewGalleryHandler(deps.DB, deps.Audit)
	pdfs := NewPDFsHandler(deps.DB, deps.Audit)

	api := router.Group("/api")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(authMiddleware(deps.DB, deps.JWTSecret))

	authed.GET("/auth/verify", authHandler.Verify)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.POST("/auth/logout", authHandler.Logout)

	authed.GET("/dashboard/stats", dashboard.Stats)

	users := authed.Group("/admin-users", requireMasterAdmin())
	users.GET("", adminUsers.List)
	users.POST("", adminUsers.Create)
	users.GET("/:id", adminUsers.Get)
	users.PUT("/:id", adminUsers.Update)
	users.DELETE("/:id", adminUsers.Delete)
	users.POST("/:id/reset-password", adminUsers.ResetPassword)
	users.DELETE("/:id/permanent", adminUsers.HardDelete)

	logs := authed.Group("/activity-logs", requirePermission(permission.KeyAdmins))
	logs.GET("", activity.List)
	logs.GET("/summary", activity.Summary)

	content := authed.Group("/admin")
	registerContent(content.Group("/notifications", requirePermission(permission.KeyNotifications)),
		notifications.List, notifications.Create, notifications.Update, notifications.Delete)
	registerContent(content.Group("/events", requirePermission(permission.KeyEvents)),
		events.List, events.Create, events.Update, events.Delete)
	registerContent(content.Group("/gallery", requirePermission(permission.KeyGallery)),
		gallery.List, gallery.Create, gallery.Update, gallery.Delete)
	registerContent(content.Group("/pdfs", requirePermission(permission.KeyPDFs)),
		pdfs.List, pdfs.Create, pdfs.Update, pdfs.Delete)
}

// registerContent mounts the shared CRUD layout of a content entity group.
func registerContent(group *gin.RouterGroup, list, create, update, remove gin.HandlerFunc) {
	group.GET("", list)
	group.POST("", create)
	group.PUT("/:id", update)
	group.DELETE("/:id", remove)
}
