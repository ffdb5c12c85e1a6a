package models

import (
	"time"

	"github.com/fieldline/crm-backend/internal/domain/billing"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AuditedAggregateModel
	LeadID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceNumber   string                `gorm:"type:varchar(20);not null;uniqueIndex"`
	TotalAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AmountReceived  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	AmountRemaining decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Status          billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Notes           string                `gorm:"type:text"`
	Items           []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments        []InvoicePaymentModel `gorm:"foreignKey:InvoiceID;references:ID"`
	DeletedAt       *time.Time            `gorm:"index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		LeadID:          m.LeadID,
		InvoiceNumber:   m.InvoiceNumber,
		TotalAmount:     m.TotalAmount,
		AmountReceived:  m.AmountReceived,
		AmountRemaining: m.AmountRemaining,
		Status:          m.Status,
		Notes:           m.Notes,
		DeletedAt:       m.DeletedAt,
		Items:           make([]billing.InvoiceItem, len(m.Items)),
		Payments:        make([]billing.InvoicePayment, len(m.Payments)),
	}
	m.PopulateAuditedAggregateRoot(&invoice.AuditedAggregateRoot)
	for i, item := range m.Items {
		invoice.Items[i] = *item.ToDomain()
	}
	for i, payment := range m.Payments {
		invoice.Payments[i] = *payment.ToDomain()
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAuditedAggregateRoot(inv.AuditedAggregateRoot)
	m.LeadID = inv.LeadID
	m.InvoiceNumber = inv.InvoiceNumber
	m.TotalAmount = inv.TotalAmount
	m.AmountReceived = inv.AmountReceived
	m.AmountRemaining = inv.AmountRemaining
	m.Status = inv.Status
	m.Notes = inv.Notes
	m.DeletedAt = inv.DeletedAt
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
	m.Payments = make([]InvoicePaymentModel, len(inv.Payments))
	for i, payment := range inv.Payments {
		m.Payments[i] = *InvoicePaymentModelFromDomain(&payment)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceName string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		InvoiceID:   m.InvoiceID,
		ServiceName: m.ServiceName,
		Description: m.Description,
		Amount:      m.Amount,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(item *billing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.ServiceName = item.ServiceName
	m.Description = item.Description
	m.Amount = item.Amount
	return m
}

// InvoicePaymentModel is the persistence model for an invoice payment row.
// Refund rows carry a negative amount.
type InvoicePaymentModel struct {
	BaseModel
	InvoiceID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate          time.Time             `gorm:"not null;index"`
	PaymentMethod        billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	TransactionReference string                `gorm:"type:varchar(100)"`
	Notes                string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the persistence model to a domain InvoicePayment entity.
func (m *InvoicePaymentModel) ToDomain() *billing.InvoicePayment {
	return &billing.InvoicePayment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		InvoiceID:            m.InvoiceID,
		Amount:               m.Amount,
		PaymentDate:          m.PaymentDate,
		PaymentMethod:        m.PaymentMethod,
		TransactionReference: m.TransactionReference,
		Notes:                m.Notes,
	}
}

// InvoicePaymentModelFromDomain creates a new persistence model from a domain InvoicePayment.
func InvoicePaymentModelFromDomain(p *billing.InvoicePayment) *InvoicePaymentModel {
	m := &InvoicePaymentModel{}
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.PaymentMethod = p.PaymentMethod
	m.TransactionReference = p.TransactionReference
	m.Notes = p.Notes
	return m
}

// InvoiceSequenceModel stores the monthly invoice-number counter. One row
// per year+month pair, incremented atomically.
type InvoiceSequenceModel struct {
	Year      int       `gorm:"primaryKey;autoIncrement:false"`
	Month     int       `gorm:"primaryKey;autoIncrement:false"`
	Value     int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}
