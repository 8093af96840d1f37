package audit

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	dbpkg "github.com/charana-seva/charana-backend/internal/db"
	"github.com/charana-seva/charana-backend/internal/models"
	"gorm.io/gorm"
)

func openAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := dbpkg.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return conn
}

func TestLogPersistsEntry(t *testing.T) {
	conn := openAuditTestDB(t)
	logger := NewLogger(conn, false)

	actorID := uint64(7)
	entityID := uint64(3)
	logger.Log(context.Background(), Entry{
		ActorID:    &actorID,
		Action:     ActionUpdate,
		EntityType: "event",
		EntityID:   &entityID,
		Old:        map[string]any{"title": "before"},
		New:        map[string]any{"title": "after"},
		Meta:       RequestMeta{IPAddress: "10.0.0.9", UserAgent: "test-agent"},
	})

	var row models.ActivityLog
	if errFind := conn.First(&row).Error; errFind != nil {
		t.Fatalf("find log row: %v", errFind)
	}
	if row.Action != ActionUpdate || row.EntityType != "event" {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.UserID == nil || *row.UserID != actorID {
		t.Fatalf("unexpected actor %v", row.UserID)
	}
	if row.IPAddress != "10.0.0.9" || row.UserAgent != "test-agent" {
		t.Fatalf("unexpected attribution %q %q", row.IPAddress, row.UserAgent)
	}
	if len(row.OldValues) == 0 || len(row.NewValues) == 0 {
		t.Fatal("expected snapshots persisted")
	}
}

func TestLogSwallowsPersistenceFailure(t *testing.T) {
	conn := openAuditTestDB(t)
	logger := NewLogger(conn, false)

	if errDrop := conn.Migrator().DropTable(&models.ActivityLog{}); errDrop != nil {
		t.Fatalf("drop table: %v", errDrop)
	}
	// Must not panic or surface the error to the caller.
	logger.Log(context.Background(), Entry{Action: ActionCreate, EntityType: "event"})
}

func TestRecentFiltersAndJoinsActor(t *testing.T) {
	conn := openAuditTestDB(t)
	logger := NewLogger(conn, false)
	ctx := context.Background()

	admin := models.AdminUser{Username: "seva", PasswordHash: "x", FullName: "Seva Admin", Role: models.RoleAdmin, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}

	logger.Log(ctx, Entry{ActorID: &admin.ID, Action: ActionCreate, EntityType: "event"})
	logger.Log(ctx, Entry{ActorID: &admin.ID, Action: ActionUpdate, EntityType: "notification"})
	logger.Log(ctx, Entry{Action: ActionLoginSuccess, EntityType: "admin_user"})

	all, errRecent := logger.Recent(ctx, RecentFilter{})
	if errRecent != nil {
		t.Fatalf("recent: %v", errRecent)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}

	events, errRecent := logger.Recent(ctx, RecentFilter{EntityType: "event"})
	if errRecent != nil {
		t.Fatalf("recent filtered: %v", errRecent)
	}
	if len(events) != 1 || events[0].Action != ActionCreate {
		t.Fatalf("unexpected filtered rows %+v", events)
	}
	if events[0].Username != "seva" || events[0].FullName != "Seva Admin" {
		t.Fatalf("actor join missing: %+v", events[0])
	}

	byActor, errRecent := logger.Recent(ctx, RecentFilter{ActorID: &admin.ID})
	if errRecent != nil {
		t.Fatalf("recent by actor: %v", errRecent)
	}
	if len(byActor) != 2 {
		t.Fatalf("expected 2 rows for actor, got %d", len(byActor))
	}

	limited, errRecent := logger.Recent(ctx, RecentFilter{Limit: 1})
	if errRecent != nil {
		t.Fatalf("recent limited: %v", errRecent)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 row, got %d", len(limited))
	}
}

func TestRecentSearchMatchesActionAndUsername(t *testing.T) {
	conn := openAuditTestDB(t)
	logger := NewLogger(conn, false)
	ctx := context.Background()

	admin := models.AdminUser{Username: "SevaAdmin", PasswordHash: "x", FullName: "Seva Admin", Role: models.RoleAdmin, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}

	logger.Log(ctx, Entry{ActorID: &admin.ID, Action: ActionCreate, EntityType: "event"})
	logger.Log(ctx, Entry{Action: ActionLoginSuccess, EntityType: "admin_user"})
	logger.Log(ctx, Entry{Action: ActionDelete, EntityType: "notification"})

	byAction, errRecent := logger.Recent(ctx, RecentFilter{Search: "login"})
	if errRecent != nil {
		t.Fatalf("recent search: %v", errRecent)
	}
	if len(byAction) != 1 || byAction[0].Action != ActionLoginSuccess {
		t.Fatalf("unexpected action search rows %+v", byAction)
	}

	byUser, errRecent := logger.Recent(ctx, RecentFilter{Search: "sevaadmin"})
	if errRecent != nil {
		t.Fatalf("recent search: %v", errRecent)
	}
	if len(byUser) != 1 || byUser[0].Username != "SevaAdmin" {
		t.Fatalf("unexpected username search rows %+v", byUser)
	}

	none, errRecent := logger.Recent(ctx, RecentFilter{Search: "nomatch"})
	if errRecent != nil {
		t.Fatalf("recent search: %v", errRecent)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows, got %+v", none)
	}
}

func TestSummaryGroupsByActionEntityAndDay(t *testing.T) {
	conn := openAuditTestDB(t)
	logger := NewLogger(conn, false)
	ctx := context.Background()

	logger.Log(ctx, Entry{Action: ActionCreate, EntityType: "event"})
	logger.Log(ctx, Entry{Action: ActionCreate, EntityType: "event"})
	logger.Log(ctx, Entry{Action: ActionDelete, EntityType: "notification"})

	rows, errSummary := logger.Summary(ctx, 7)
	if errSummary != nil {
		t.Fatalf("summary: %v", errSummary)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups, got %d: %+v", len(rows), rows)
	}
	counts := map[string]int64{}
	for _, row := range rows {
		counts[row.Action+"/"+row.EntityType] = row.Count
		if row.Date == "" {
			t.Fatalf("missing date in %+v", row)
		}
	}
	if counts[ActionCreate+"/event"] != 2 {
		t.Fatalf("expected 2 event creates, got %d", counts[ActionCreate+"/event"])
	}
	if counts[ActionDelete+"/notification"] != 1 {
		t.Fatalf("expected 1 notification delete, got %d", counts[ActionDelete+"/notification"])
	}
}

func TestMetaFromRequestPrefersForwardedFor(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/api/health", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("User-Agent", "test-agent")

	meta := MetaFromRequest(req)
	if meta.IPAddress != "192.0.2.1" {
		t.Fatalf("expected socket address, got %q", meta.IPAddress)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.2")
	meta = MetaFromRequest(req)
	if meta.IPAddress != "203.0.113.5" {
		t.Fatalf("expected first forwarded hop, got %q", meta.IPAddress)
	}
	if meta.UserAgent != "test-agent" {
		t.Fatalf("unexpected user agent %q", meta.UserAgent)
	}
}

func TestMetaFromRequestHandlesIPv6RemoteAddr(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/api/health", nil)

	req.RemoteAddr = "[::1]:8080"
	if meta := MetaFromRequest(req); meta.IPAddress != "::1" {
		t.Fatalf("expected bracketed host stripped, got %q", meta.IPAddress)
	}

	// Some proxies hand over a bare address with no port at all.
	req.RemoteAddr = "::1"
	if meta := MetaFromRequest(req); meta.IPAddress != "::1" {
		t.Fatalf("expected bare address kept, got %q", meta.IPAddress)
	}
}
