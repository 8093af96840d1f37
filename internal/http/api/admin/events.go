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

// EventsHandler manages event announcements. Routes sit behind
// requirePermission("events").
type EventsHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

// NewEventsHandler constructs an EventsHandler.
func NewEventsHandler(db *gorm.DB, auditLogger *audit.Logger) *EventsHandler {
	return &EventsHandler{db: db, audit: auditLogger}
}

// List returns all events, inactive included, in display order.
func (h *EventsHandler) List(c *gin.Context) {
	var rows []models.Event
	if errFind := h.db.WithContext(c.Request.Context()).Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "List events failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "events": rows})
}

// eventRequest defines the request body for event creation.
type eventRequest struct {
	Title         string `json:"title"`
	TitleEn       string `json:"title_en"`
	Date          string `json:"date"`
	DateEn        string `json:"date_en"`
	Time          string `json:"time"`
	TimeEn        string `json:"time_en"`
	Description   string `json:"description"`
	DescriptionEn string `json:"description_en"`
	ImagePath     string `json:"image_path"`
	DisplayOrder  int    `json:"display_order"`
}

// Create adds a new event.
func (h *EventsHandler) Create(c *gin.Context) {
	var body eventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	date := strings.TrimSpace(body.Date)
	eventTime := strings.TrimSpace(body.Time)
	description := strings.TrimSpace(body.Description)
	if title == "" || date == "" || eventTime == "" || description == "" {
		fail(c, http.StatusBadRequest, "Title, date, time and description are required")
		return
	}

	actorID := actorIDFromContext(c)
	row := models.Event{
		Title:         title,
		TitleEn:       strings.TrimSpace(body.TitleEn),
		Date:          date,
		DateEn:        strings.TrimSpace(body.DateEn),
		Time:          eventTime,
		TimeEn:        strings.TrimSpace(body.TimeEn),
		Description:   description,
		DescriptionEn: strings.TrimSpace(body.DescriptionEn),
		ImagePath:     strings.TrimSpace(body.ImagePath),
		Active:        true,
		DisplayOrder:  body.DisplayOrder,
		CreatedBy:     actorID,
		UpdatedBy:     actorID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		fail(c, http.StatusInternalServerError, "Create event failed")
		return
	}

	h.logChange(c, audit.ActionCreate, row.ID, nil, row)
	c.JSON(http.StatusCreated, gin.H{"success": true, "event": row})
}

// updateEventRequest defines the typed patch for event updates.
type updateEventRequest struct {
	Title         *string `json:"title"`
	TitleEn       *string `json:"title_en"`
	Date          *string `json:"date"`
	DateEn        *string `json:"date_en"`
	Time          *string `json:"time"`
	TimeEn        *string `json:"time_en"`
	Description   *string `json:"description"`
	DescriptionEn *string `json:"description_en"`
	ImagePath     *string `json:"image_path"`
	Active        *bool   `json:"is_active"`
	DisplayOrder  *int    `json:"display_order"`
}

// Update applies a typed patch to an event.
func (h *EventsHandler) Update(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	var body updateEventRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	old := *row
	updates := map[string]any{"updated_by": actorIDFromContext(c)}
	setRequired := func(column string, value *string, label string) bool {
		if value == nil {
			return true
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			fail(c, http.StatusBadRequest, label+" cannot be empty")
			return false
		}
		updates[column] = trimmed
		return true
	}
	if !setRequired("title", body.Title, "Title") ||
		!setRequired("date", body.Date, "Date") ||
		!setRequired("time", body.Time, "Time") ||
		!setRequired("description", body.Description, "Description") {
		return
	}
	if body.TitleEn != nil {
		updates["title_en"] = strings.TrimSpace(*body.TitleEn)
	}
	if body.DateEn != nil {
		updates["date_en"] = strings.TrimSpace(*body.DateEn)
	}
	if body.TimeEn != nil {
		updates["time_en"] = strings.TrimSpace(*body.TimeEn)
	}
	if body.DescriptionEn != nil {
		updates["description_en"] = strings.TrimSpace(*body.DescriptionEn)
	}
	if body.ImagePath != nil {
		updates["image_path"] = strings.TrimSpace(*body.ImagePath)
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
		fail(c, http.StatusInternalServerError, "Update event failed")
		return
	}
	var updated models.Event
	if errFind := h.db.WithContext(ctx).First(&updated, row.ID).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "Update event failed")
		return
	}

	h.logChange(c, audit.ActionUpdate, updated.ID, old, updated)
	c.JSON(http.StatusOK, gin.H{"success": true, "event": updated})
}

// Delete hides an event from public listings.
func (h *EventsHandler) Delete(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	old := *row
	updates := map[string]any{"active": false, "updated_by": actorIDFromContext(c)}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Delete event failed")
		return
	}

	h.logChange(c, audit.ActionDelete, row.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Event deleted"})
}

func (h *EventsHandler) findByParam(c *gin.Context) (*models.Event, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	var row models.Event
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Event not found")
			return nil, false
		}
		fail(c, http.StatusInternalServerError, "Query failed")
		return nil, false
	}
	return &row, true
}

func (h *EventsHandler) logChange(c *gin.Context, action string, id uint64, old, next any) {
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    actorIDFromContext(c),
		Action:     action,
		EntityType: "event",
		EntityID:   &id,
		Old:        old,
		New:        next,
		Meta:       audit.MetaFromRequest(c.Request),
	})
}
