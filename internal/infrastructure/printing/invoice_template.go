package printing

import (
	"embed"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const invoiceTemplatePath = "templates/invoice_a4.html"

// InvoiceDocument carries the data rendered into the invoice template.
type InvoiceDocument struct {
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string

	InvoiceNumber string
	Status        string
	StatusLabel   string
	InvoiceDate   time.Time
	DueDate       *time.Time

	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Items    []InvoiceDocumentItem
	Payments []InvoiceDocumentPayment

	TotalAmount     decimal.Decimal
	AmountReceived  decimal.Decimal
	AmountRemaining decimal.Decimal

	GeneratedAt time.Time
}

// InvoiceDocumentItem is a single line item on the invoice.
type InvoiceDocumentItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceDocumentPayment is a row in the payment history section.
// Refunds carry a negative amount.
type InvoiceDocumentPayment struct {
	PaymentDate time.Time
	PaymentMode string
	Notes       string
	Amount      decimal.Decimal
	IsRefund    bool
}

// RenderInvoiceHTML renders the built-in A4 invoice template.
func (e *TemplateEngine) RenderInvoiceHTML(doc *InvoiceDocument) (string, error) {
	content, err := templateFS.ReadFile(invoiceTemplatePath)
	if err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "invoice template missing", err)
	}
	if doc.GeneratedAt.IsZero() {
		doc.GeneratedAt = time.Now()
	}
	return e.RenderString("invoice_a4", string(content), doc)
}
