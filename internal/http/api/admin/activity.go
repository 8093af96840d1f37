package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/charana-seva/charana-backend/internal/audit"
	"github.com/gin-gonic/gin"
)

// ActivityHandler exposes the activity log to the admin console.
type ActivityHandler struct {
	audit *audit.Logger
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(auditLogger *audit.Logger) *ActivityHandler {
	return &ActivityHandler{audit: auditLogger}
}

// List returns recent activity, newest first. Optional query filters:
// limit, entity_type, user_id, search (case-insensitive match on action
// and actor username).
func (h *ActivityHandler) List(c *gin.Context) {
	filter := audit.RecentFilter{
		EntityType: strings.TrimSpace(c.Query("entity_type")),
		Search:     strings.TrimSpace(c.Query("search")),
	}
	if limitQ := strings.TrimSpace(c.Query("limit")); limitQ != "" {
		limit, errParse := strconv.Atoi(limitQ)
		if errParse != nil || limit <= 0 {
			fail(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if userQ := strings.TrimSpace(c.Query("user_id")); userQ != "" {
		userID, errParse := strconv.ParseUint(userQ, 10, 64)
		if errParse != nil {
			fail(c, http.StatusBadRequest, "Invalid user_id")
			return
		}
		filter.ActorID = &userID
	}

	records, errQuery := h.audit.Recent(c.Request.Context(), filter)
	if errQuery != nil {
		fail(c, http.StatusInternalServerError, "List activity failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": records})
}

// Summary returns day-grouped activity counts over the trailing window.
// Optional query filter: days (default 7).
func (h *ActivityHandler) Summary(c *gin.Context) {
	days := 0
	if daysQ := strings.TrimSpace(c.Query("days")); daysQ != "" {
		parsed, errParse := strconv.Atoi(daysQ)
		if errParse != nil || parsed <= 0 {
			fail(c, http.StatusBadRequest, "Invalid days")
			return
		}
		days = parsed
	}

	rows, errQuery := h.audit.Summary(c.Request.Context(), days)
	if errQuery != nil {
		fail(c, http.StatusInternalServerError, "Activity summary failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": rows})
}
