package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/fieldline/crm-backend/internal/application/billing"
	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/infrastructure/printing"
)

// InvoiceHandler handles invoice and payment endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appbilling.InvoiceService
	leadService    *appcrm.LeadService
	templateEngine *printing.TemplateEngine
	pdfRenderer    printing.PDFRenderer
	companyName    string
}

// NewInvoiceHandler creates a new InvoiceHandler. The renderer may be
// nil when PDF generation is disabled.
func NewInvoiceHandler(
	invoiceService *appbilling.InvoiceService,
	leadService *appcrm.LeadService,
	templateEngine *printing.TemplateEngine,
	pdfRenderer printing.PDFRenderer,
	companyName string,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		leadService:    leadService,
		templateEngine: templateEngine,
		pdfRenderer:    pdfRenderer,
		companyName:    companyName,
	}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appbilling.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if actorID, err := getUserID(c); err == nil {
		req.CreatedBy = &actorID
	}

	result, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	result, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter appbilling.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// ListByLead handles GET /leads/:id/invoices
func (h *InvoiceHandler) ListByLead(c *gin.Context) {
	leadID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	invoices, err := h.invoiceService.ListByLead(c.Request.Context(), leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}

// AddPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req appbilling.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	var actorID *uuid.UUID
	if id, err := getUserID(c); err == nil {
		actorID = &id
	}

	result, err := h.invoiceService.AddPayment(c.Request.Context(), id, req, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeletePayment handles DELETE /invoice-payments/:paymentId
func (h *InvoiceHandler) DeletePayment(c *gin.Context) {
	paymentID, err := parseIDParam(c, "paymentId")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var actorID *uuid.UUID
	if id, err := getUserID(c); err == nil {
		actorID = &id
	}

	result, err := h.invoiceService.DeletePayment(c.Request.Context(), paymentID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DownloadPDF handles GET /invoices/:id/pdf. Renders the invoice into
// the A4 template and streams the result.
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	if h.pdfRenderer == nil {
		h.BadRequest(c, "PDF rendering is not enabled")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetAggregate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	lead, err := h.leadService.GetByID(c.Request.Context(), invoice.LeadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	doc := buildInvoiceDocument(invoice, lead, h.companyName)
	html, err := h.templateEngine.RenderInvoiceHTML(doc)
	if err != nil {
		h.InternalError(c, "Failed to render invoice")
		return
	}

	result, err := h.pdfRenderer.Render(c.Request.Context(), &printing.RenderRequest{
		HTML:    html,
		Title:   invoice.InvoiceNumber,
		Margins: printing.DefaultMargins(),
	})
	if err != nil {
		h.InternalError(c, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}

// buildInvoiceDocument maps the invoice aggregate and its lead into the
// printable document
func buildInvoiceDocument(invoice *billing.Invoice, lead *appcrm.LeadResponse, companyName string) *printing.InvoiceDocument {
	items := make([]printing.InvoiceDocumentItem, len(invoice.Items))
	for i, item := range invoice.Items {
		description := item.ServiceName
		if item.Description != "" {
			description += " - " + item.Description
		}
		items[i] = printing.InvoiceDocumentItem{
			Description: description,
			Quantity:    1,
			UnitPrice:   item.Amount,
			Amount:      item.Amount,
		}
	}

	payments := make([]printing.InvoiceDocumentPayment, len(invoice.Payments))
	for i, p := range invoice.Payments {
		payments[i] = printing.InvoiceDocumentPayment{
			PaymentDate: p.PaymentDate,
			PaymentMode: strings.ReplaceAll(string(p.PaymentMethod), "_", " "),
			Notes:       p.Notes,
			Amount:      p.Amount,
			IsRefund:    p.Amount.IsNegative(),
		}
	}

	return &printing.InvoiceDocument{
		CompanyName:     companyName,
		InvoiceNumber:   invoice.InvoiceNumber,
		Status:          string(invoice.Status),
		StatusLabel:     statusLabel(invoice.Status),
		InvoiceDate:     invoice.CreatedAt,
		CustomerName:    lead.Name,
		CustomerPhone:   lead.Phone,
		CustomerEmail:   lead.Email,
		Items:           items,
		Payments:        payments,
		TotalAmount:     invoice.TotalAmount,
		AmountReceived:  invoice.AmountReceived,
		AmountRemaining: invoice.AmountRemaining,
	}
}

func statusLabel(status billing.InvoiceStatus) string {
	words := strings.Split(string(status), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
