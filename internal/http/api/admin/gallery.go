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

// GalleryHandler manages gallery image entries. Routes sit behind
// requirePermission("gallery").
type GalleryHandler struct {
	db    *gorm.DB
	audit *audit.Logger
}

// NewGalleryHandler constructs a GalleryHandler.
func NewGalleryHandler(db *gorm.DB, auditLogger *audit.Logger) *GalleryHandler {
	return &GalleryHandler{db: db, audit: auditLogger}
}

// List returns all gallery entries, inactive included, in display order.
func (h *GalleryHandler) List(c *gin.Context) {
	var rows []models.GalleryImage
	if errFind := h.db.WithContext(c.Request.Context()).Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "List gallery failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "images": rows})
}

// galleryRequest defines the request body for gallery entry creation.
type galleryRequest struct {
	Title         string `json:"title"`
	TitleEn       string `json:"title_en"`
	ImagePath     string `json:"image_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	DisplayOrder  int    `json:"display_order"`
}

// Create adds a new gallery entry. The image file itself is managed outside
// this service; only its path is recorded.
func (h *GalleryHandler) Create(c *gin.Context) {
	var body galleryRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	imagePath := strings.TrimSpace(body.ImagePath)
	if title == "" || imagePath == "" {
		fail(c, http.StatusBadRequest, "Title and image path are required")
		return
	}

	actorID := actorIDFromContext(c)
	row := models.GalleryImage{
		Title:         title,
		TitleEn:       strings.TrimSpace(body.TitleEn),
		ImagePath:     imagePath,
		ThumbnailPath: strings.TrimSpace(body.ThumbnailPath),
		Active:        true,
		DisplayOrder:  body.DisplayOrder,
		UploadedBy:    actorID,
		UpdatedBy:     actorID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		fail(c, http.StatusInternalServerError, "Create gallery image failed")
		return
	}

	h.logChange(c, audit.ActionCreate, row.ID, nil, row)
	c.JSON(http.StatusCreated, gin.H{"success": true, "image": row})
}

// updateGalleryRequest defines the typed patch for gallery entry updates.
type updateGalleryRequest struct {
	Title         *string `json:"title"`
	TitleEn       *string `json:"title_en"`
	ImagePath     *string `json:"image_path"`
	ThumbnailPath *string `json:"thumbnail_path"`
	Active        *bool   `json:"is_active"`
	DisplayOrder  *int    `json:"display_order"`
}

// Update applies a typed patch to a gallery entry.
func (h *GalleryHandler) Update(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	var body updateGalleryRequest
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
	if body.ImagePath != nil {
		imagePath := strings.TrimSpace(*body.ImagePath)
		if imagePath == "" {
			fail(c, http.StatusBadRequest, "Image path cannot be empty")
			return
		}
		updates["image_path"] = imagePath
	}
	if body.ThumbnailPath != nil {
		updates["thumbnail_path"] = strings.TrimSpace(*body.ThumbnailPath)
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
		fail(c, http.StatusInternalServerError, "Update gallery image failed")
		return
	}
	var updated models.GalleryImage
	if errFind := h.db.WithContext(ctx).First(&updated, row.ID).Error; errFind != nil {
		fail(c, http.StatusInternalServerError, "Update gallery image failed")
		return
	}

	h.logChange(c, audit.ActionUpdate, updated.ID, old, updated)
	c.JSON(http.StatusOK, gin.H{"success": true, "image": updated})
}

// Delete hides a gallery entry from the public gallery.
func (h *GalleryHandler) Delete(c *gin.Context) {
	row, ok := h.findByParam(c)
	if !ok {
		return
	}
	old := *row
	updates := map[string]any{"active": false, "updated_by": actorIDFromContext(c)}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(row).Updates(updates).Error; errUpdate != nil {
		fail(c, http.StatusInternalServerError, "Delete gallery image failed")
		return
	}

	h.logChange(c, audit.ActionDelete, row.ID, old, nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Gallery image deleted"})
}

func (h *GalleryHandler) findByParam(c *gin.Context) (*models.GalleryImage, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		fail(c, http.StatusBadRequest, "Invalid id")
		return nil, false
	}
	var row models.GalleryImage
	if errFind := h.db.WithContext(c.Request.Context()).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Gallery image not found")
			return nil, false
		}
		fail(c, http.StatusInternalServerError, "Query failed")
		return nil, false
	}
	return &row, true
}

func (h *GalleryHandler) logChange(c *gin.Context, action string, id uint64, old, next any) {
	h.audit.Log(c.Request.Context(), audit.Entry{
		ActorID:    actorIDFromContext(c),
		Action:     action,
		EntityType: "gallery_image",
		EntityID:   &id,
		Old:        old,
		New:        next,
		Meta:       audit.MetaFromRequest(c.Request),
	})
}
