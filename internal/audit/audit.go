// Package audit records every state-changing action to an append-only
// activity log. Writes are fire-and-forget: a failed insert is reported to
// the server log and discarded, so an audit storage hiccup can never roll
// back or block the business mutation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/charana-seva/charana-backend/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Action tags. Free-form in storage, but writers stick to this vocabulary.
const (
	ActionCreate          = "CREATE"
	ActionUpdate          = "UPDATE"
	ActionDelete          = "DELETE"
	ActionHardDelete      = "HARD_DELETE"
	ActionLoginSuccess    = "LOGIN_SUCCESS"
	ActionLogout          = "LOGOUT"
	ActionChangePassword  = "CHANGE_PASSWORD"
	ActionResetPassword   = "RESET_PASSWORD"
	ActionCreateAdmin     = "CREATE_ADMIN"
	ActionUpdateAdmin     = "UPDATE_ADMIN"
	ActionDeleteAdmin     = "DELETE_ADMIN"
	ActionHardDeleteAdmin = "HARD_DELETE_ADMIN"
)

// RequestMeta carries client attribution copied onto each log row.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// MetaFromRequest extracts client attribution from an HTTP request,
// preferring the forwarded-for header over the socket address.
func MetaFromRequest(r *http.Request) RequestMeta {
	if r == nil {
		return RequestMeta{}
	}
	ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if idx := strings.Index(ip, ","); idx >= 0 {
		ip = strings.TrimSpace(ip[:idx])
	}
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, errSplit := net.SplitHostPort(ip); errSplit == nil {
			ip = host
		}
	}
	return RequestMeta{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}

// Entry describes one auditable action. Old and New are arbitrary snapshots
// serialized to JSON; either may be nil.
type Entry struct {
	ActorID    *uint64
	Action     string
	EntityType string
	EntityID   *uint64
	Old        any
	New        any
	Meta       RequestMeta
}

// Logger writes and queries activity log rows.
type Logger struct {
	db    *gorm.DB
	debug bool
}

// NewLogger constructs a Logger. When debug is true every entry is echoed to
// the server log.
func NewLogger(db *gorm.DB, debug bool) *Logger {
	return &Logger{db: db, debug: debug}
}

// Log records one entry. Persistence failures are swallowed and reported to
// the server log only; callers never observe them.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	row := models.ActivityLog{
		UserID:     entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValues:  marshalSnapshot(entry.Old),
		NewValues:  marshalSnapshot(entry.New),
		IPAddress:  entry.Meta.IPAddress,
		UserAgent:  entry.Meta.UserAgent,
	}
	if errCreate := l.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		log.Errorf("audit: log %s %s failed: %v", entry.Action, entry.EntityType, errCreate)
		return
	}
	if l.debug {
		log.Debugf("audit: %s %s #%v by user %v", entry.Action, entry.EntityType, entry.EntityID, entry.ActorID)
	}
}

// marshalSnapshot serializes a snapshot value, nil staying nil. A value that
// fails to marshal is dropped rather than failing the log write.
func marshalSnapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, errMarshal := json.Marshal(v)
	if errMarshal != nil {
		log.Errorf("audit: marshal snapshot failed: %v", errMarshal)
		return nil
	}
	return datatypes.JSON(raw)
}
