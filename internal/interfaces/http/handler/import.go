package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appimporter "github.com/fieldline/crm-backend/internal/application/importer"
	"github.com/fieldline/crm-backend/internal/infrastructure/config"
)

const maxImportFileSize = 5 << 20

// ImportHandler handles bulk lead uploads
type ImportHandler struct {
	BaseHandler
	importService *appimporter.LeadImportService
	cfg           config.ImportConfig
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *appimporter.LeadImportService, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{importService: importService, cfg: cfg}
}

// BulkUpload handles POST /leads/bulk-upload
func (h *ImportHandler) BulkUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), file, appimporter.Config{
		DefaultCity:   h.cfg.DefaultCity,
		DefaultSource: h.cfg.DefaultSource,
		MaxRows:       h.cfg.MaxRows,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Template handles GET /leads/bulk-upload/template
func (h *ImportHandler) Template(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="lead_import_template.csv"`)
	c.Data(http.StatusOK, "text/csv", appimporter.TemplateCSV())
}
