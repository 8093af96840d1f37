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

// PDFsHandler manages downloadable document entries. Routes sit behind
// requirePermission("pdfs").
type PDFsHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

// NewPDFsHandler constructs a PDFsHandler.
func NewPDFsHandler(db *gorm.DB, auditLogger *audit.Logger) *PDFsHandler {
	return &PDFsHandler{db: db, audit: auditLogger}
}

// List returns all document entries, inactive included, in display order.
func (h *PDFsHandler) List(c *gin.Context) {
	var rows []models.PDFDocument
	if errFind := h.db.WithContext(c.Request.Context()).Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "List documents failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pdfs": rows})
}

// pdfRequest defines the request body for document entry creation.
type pdfRequest struct {
	Title        string `json:"title"`
	TitleEn      string `json:"title_en"`
	FilePath     string `json:"file_path"`
	FileSize     int64  `json:"file_size"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

// Create adds a new document entry.
func (h *PDFsHandler) Create(c *gin.Context) {
	var body pdfRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	filePath := strings.TrimSpace(body.FilePath)
	if title == "" || filePath == "" {
		fail(c, http.StatusBadRequest, "Title and file path are required")
		return
	}
	if body.FileSize < 0 {
		fail(c, http.StatusBadRequest, "Invalid file size")
		return
	}

	actorID := actorIDFromContext(c)
	row := models.PDFDocument{
		Title:        title,
		TitleEn:      strings.TrimSpace(body.TitleEn),
		FilePath:     filePath,
		FileSize:     body.FileSize,
		Description:  strings.TrimSpace(body.Description),
		Active:       true,
		DisplayOrder: body.DisplayOrder,
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		fail(c, http.StatusInternalServerError, "Create document failed")
		return
	}

	h.logChange(c, audit.ActionCreate, row.ID, nil, row)
	c.JSON(http.StatusCreated, gin.H{"success": true, "pdf": row})
}

// updatePDFRequest defines the typed patch for document entry updates.
type updatePDFRequest struct {
	Title        *string `json:"title"`
	TitleEn      *string `json:"title_en"`
	FilePath     *string `json:"file_path"`
	FileSize     *int64  `json:"file_size"`
	Description  *string `json:"description"`
	Active       *bool   `json:"is_active"`
	DisplayOrder *int    `json:"display_order"`
}

// Update applies a typed patch to a document entry.
func (h *PDFsHandler) Update(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	var body updatePDFRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	old := *row
	updates := map[string]any{"updated_by": actorIDFromContext(c)}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			fail(c, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		updates["title"] = title
	}
	if body.TitleEn != nil {
		updates["title_en"] = strings.TrimSpace(*body.TitleEn)
	}
	if body.FilePath != nil {
		filePath := strings.TrimSpace(*body.FilePath)
		if filePath == "" {
			fail(c, http.StatusBadRequest, "File path cannot be empty")
			return
		}
		updates["file_path"] = filePath
	}
	if body.FileSize != nil {
		if *body.FileSize < 0 {
			fail(c, http.StatusBadRequest, "Invalid file size")
			return
		}
		updates["file_size"] = *body.FileSize
	}
	if body.Description != nil {
		updates["description"] = strings.TrimSpace(*body.Description)
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
		fail(c, http.StatusInternalServerError, "Update document failed")
		return
	}
	var updated models.PDFDocument
	if errFind := h.db.WithContext(ctx).First(&updated, row.ID).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "Update document failed")
		return
	}

	h.logChange(c, audit.ActionUpdate, updated.ID, old, updated)
	c.JSON(http.StatusOK, gin.H{"success": true, "pdf": updated})
}

// Delete hides a document entry from public listings.
func (h *PDFsHandler) Delete(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	old := *row
	updates := map[string]any{"active": false, "updated_by": actorIDFromContext(c)}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Delete document failed")
		return
	}

	h.logChange(c, audit.ActionDelete, row.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document deleted"})
}

func (h *PDFsHandler) findByParam(c *gin.Context) (*models.PDFDocument, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	var row models.PDFDocument
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Document not found")
			return nil, false
		}
		fail(c, http.StatusInternalServerError, "Query failed")
		return nil, false
	}
	return &row, true
}

func (h *PDFsHandler) logChange(c *gin.Context, action string, id uint64, old, next any) {
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    actorIDFromContext(c),
		Action:     action,
		EntityType: "pdf_document",
		EntityID:   &id,
		Old:        old,
		New:        next,
		Meta:       audit.MetaFromRequest(c.Request),
	})
}
