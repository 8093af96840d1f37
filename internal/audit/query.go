package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charana-seva/charana-backend/internal/db"
	"gorm.io/datatypes"
)

// Record is one activity log row joined with the acting admin's identity.
// Username is empty when the actor was anonymous or has been hard-deleted.
type Record struct {
	ID         uint64         `json:"id"`
	UserID     *uint64        `json:"user_id"`
	Username   string         `json:"username"`
	FullName   string         `json:"full_name"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uint64        `json:"entity_id"`
	OldValues  datatypes.JSON `json:"old_values,omitempty"`
	NewValues  datatypes.JSON `json:"new_values,omitempty"`
	IPAddress  string         `json:"ip_address"`
	UserAgent  string         `json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecentFilter narrows a Recent query. Zero values mean no filtering.
// Search matches case-insensitively against the action and the acting
// admin's username.
type RecentFilter struct {
	Limit      int
	EntityType string
	ActorID    *uint64
	Search     string
}

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Recent returns the newest log rows, most recent first.
func (l *Logger) Recent(ctx context.Context, filter RecentFilter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	query := l.db.WithContext(ctx).
		Table("activity_log").
		Select("activity_log.*, admin_users.username AS username, admin_users.full_name AS full_name").
		Joins("LEFT JOIN admin_users ON admin_users.id = activity_log.user_id").
		Order("activity_log.created_at DESC").
		Limit(limit)
	if filter.EntityType != "" {
		query = query.Where("activity_log.entity_type = ?", filter.EntityType)
	}
	if filter.ActorID != nil {
		query = query.Where("activity_log.user_id = ?", *filter.ActorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := db.NormalizeLikePattern(l.db, "%"+search+"%")
		query = query.Where(
			fmt.Sprintf("%s OR %s",
				db.CaseInsensitiveLikeExpr(l.db, "activity_log.action"),
				db.CaseInsensitiveLikeExpr(l.db, "admin_users.username")),
			pattern, pattern)
	}
	var records []Record
	if errFind := query.Find(&records).Error; errFind != nil {
		return nil, fmt.Errorf("query recent activity: %w", errFind)
	}
	return records, nil
}

// SummaryRow is an aggregate of log rows sharing an action, entity type and
// calendar day.
type SummaryRow struct {
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	Date       string `json:"date"`
	Count      int64  `json:"count"`
}

// Summary aggregates activity over the trailing number of days, newest day
// first. Days at or below zero default to seven.
func (l *Logger) Summary(ctx context.Context, days int) ([]SummaryRow, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	dateExpr := db.DateExpr(l.db, "created_at")
	var rows []SummaryRow
	errFind := l.db.WithContext(ctx).
		Table("activity_log").
		Select(fmt.Sprintf("action, entity_type, %s AS date, COUNT(*) AS count", dateExpr)).
		Where("created_at >= ?", since).
		Group(fmt.Sprintf("action, entity_type, %s", dateExpr)).
		Order("date DESC, count DESC").
		Find(&rows).Error
	if errFind != nil {
		return nil, fmt.Errorf("query activity summary: %w", errFind)
	}
	return rows, nil
}
