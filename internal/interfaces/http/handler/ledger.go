package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appbilling "github.com/fieldline/crm-backend/internal/application/billing"
	appledger "github.com/fieldline/crm-backend/internal/application/ledger"
)

const maxEntryDocumentSize = 10 << 20

// LedgerHandler handles the accounts ledger endpoints. Received and
// refund transactions flow through the invoice service so the linked
// invoice stays consistent; everything else is a plain ledger entry.
type LedgerHandler struct {
	BaseHandler
	ledgerService  *appledger.LedgerService
	invoiceService *appbilling.InvoiceService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *appledger.LedgerService, invoiceService *appbilling.InvoiceService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:  ledgerService,
		invoiceService: invoiceService,
	}
}

// RecordTransaction handles POST /accounts
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req appbilling.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if actorID, err := getUserID(c); err == nil {
		req.CreatedBy = &actorID
	}

	entry, err := h.invoiceService.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

// EditTransaction handles PUT /accounts/:id
func (h *LedgerHandler) EditTransaction(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req appbilling.EditTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.invoiceService.EditTransaction(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// Get handles GET /accounts/:id
func (h *LedgerHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.ledgerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// List handles GET /accounts
func (h *LedgerHandler) List(c *gin.Context) {
	var filter appledger.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	entries, total, err := h.ledgerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Sum handles GET /accounts/sum
func (h *LedgerHandler) Sum(c *gin.Context) {
	var filter appledger.EntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	total, err := h.ledgerService.Sum(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"total": total})
}

// Stats handles GET /accounts/stats
func (h *LedgerHandler) Stats(c *gin.Context) {
	var query struct {
		From *time.Time `form:"from" time_format:"2006-01-02"`
		To   *time.Time `form:"to" time_format:"2006-01-02"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	stats, err := h.ledgerService.Stats(c.Request.Context(), query.From, query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Delete handles DELETE /accounts/:id
func (h *LedgerHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.ledgerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AttachDocument handles POST /accounts/:id/document
func (h *LedgerHandler) AttachDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	if fileHeader.Size > maxEntryDocumentSize {
		h.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	entry, err := h.ledgerService.AttachDocument(
		c.Request.Context(), id, fileHeader.Filename, file,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// DownloadDocument handles GET /accounts/:id/document
func (h *LedgerHandler) DownloadDocument(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	content, fileName, err := h.ledgerService.DownloadDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/octet-stream", content)
}
