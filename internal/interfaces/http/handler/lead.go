package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
)

// maxDocumentSize caps uploaded lead documents at 10 MiB
const maxDocumentSize = 10 << 20

// LeadHandler handles lead CRUD, notes, documents and activity endpoints
type LeadHandler struct {
	BaseHandler
	leadService *appcrm.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *appcrm.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// Create handles POST /leads
func (h *LeadHandler) Create(c *gin.Context) {
	var req appcrm.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if actorID, err := getUserID(c); err == nil {
		req.CreatedBy = &actorID
	}

	result, err := h.leadService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get handles GET /leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	result, err := h.leadService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /leads
func (h *LeadHandler) List(c *gin.Context) {
	var filter appcrm.LeadListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	leads, total, err := h.leadService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, leads, total, filter.Page, filter.PageSize)
}

// Update handles PUT /leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appcrm.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.leadService.Update(c.Request.Context(), id, req, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkViewed handles PATCH /leads/:id/viewed. Called by the edit page on
// every open; clears the unread flag without an activity entry.
func (h *LeadHandler) MarkViewed(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.leadService.MarkViewed(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Acknowledge handles POST /leads/:id/acknowledge. The explicit action
// variant that also records the acknowledgment in the activity trail.
func (h *LeadHandler) Acknowledge(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.leadService.MarkViewedWithLog(c.Request.Context(), id, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete handles DELETE /leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddNote handles POST /leads/:id/notes
func (h *LeadHandler) AddNote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Note content is required")
		return
	}

	result, err := h.leadService.AddNote(c.Request.Context(), id, actorID, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListNotes handles GET /leads/:id/notes
func (h *LeadHandler) ListNotes(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	notes, err := h.leadService.ListNotes(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notes)
}

// DeleteNote handles DELETE /leads/notes/:noteId
func (h *LeadHandler) DeleteNote(c *gin.Context) {
	noteID, err := parseIDParam(c, "noteId")
	if err != nil {
		h.BadRequest(c, "Invalid note ID")
		return
	}

	if err := h.leadService.DeleteNote(c.Request.Context(), noteID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadDocument handles POST /leads/:id/documents (multipart)
func (h *LeadHandler) UploadDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}
	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A file is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		h.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	result, err := h.leadService.UploadDocument(
		c.Request.Context(), id, actorID,
		fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListDocuments handles GET /leads/:id/documents
func (h *LeadHandler) ListDocuments(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	documents, err := h.leadService.ListDocuments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, documents)
}

// DownloadDocument handles GET /leads/documents/:documentId/download
func (h *LeadHandler) DownloadDocument(c *gin.Context) {
	documentID, err := parseIDParam(c, "documentId")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	data, fileName, err := h.leadService.DownloadDocument(c.Request.Context(), documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DeleteDocument handles DELETE /leads/documents/:documentId
func (h *LeadHandler) DeleteDocument(c *gin.Context) {
	documentID, err := parseIDParam(c, "documentId")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.leadService.DeleteDocument(c.Request.Context(), documentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListActivity handles GET /leads/:id/activity
func (h *LeadHandler) ListActivity(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	logs, err := h.leadService.ListActivity(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, logs)
}
