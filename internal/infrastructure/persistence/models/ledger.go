package models

import (
	"time"

	"github.com/fieldline/crm-backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for the ledger Entry aggregate root.
type LedgerEntryModel struct {
	AuditedAggregateModel
	PaymentType     ledger.PaymentType     `gorm:"type:varchar(30);not null;index"`
	PaymentMode     ledger.PaymentMode     `gorm:"type:varchar(20);not null;index"`
	TransactionType ledger.TransactionType `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	TransactionDate time.Time              `gorm:"not null;index"`
	LeadID          *uuid.UUID             `gorm:"type:uuid;index"`
	InvoiceID       *uuid.UUID             `gorm:"type:uuid;index"`
	PaymentID       *uuid.UUID             `gorm:"type:uuid;uniqueIndex"`
	VendorName      string                 `gorm:"type:varchar(200)"`
	Description     string                 `gorm:"type:text"`
	DocumentPath    string                 `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain Entry entity.
func (m *LedgerEntryModel) ToDomain() *ledger.Entry {
	entry := &ledger.Entry{
		PaymentType:     m.PaymentType,
		PaymentMode:     m.PaymentMode,
		TransactionType: m.TransactionType,
		Amount:          m.Amount,
		TransactionDate: m.TransactionDate,
		LeadID:          m.LeadID,
		InvoiceID:       m.InvoiceID,
		PaymentID:       m.PaymentID,
		VendorName:      m.VendorName,
		Description:     m.Description,
		DocumentPath:    m.DocumentPath,
	}
	m.PopulateAuditedAggregateRoot(&entry.AuditedAggregateRoot)
	return entry
}

// FromDomain populates the persistence model from a domain Entry entity.
func (m *LedgerEntryModel) FromDomain(e *ledger.Entry) {
	m.FromDomainAuditedAggregateRoot(e.AuditedAggregateRoot)
	m.PaymentType = e.PaymentType
	m.PaymentMode = e.PaymentMode
	m.TransactionType = e.TransactionType
	m.Amount = e.Amount
	m.TransactionDate = e.TransactionDate
	m.LeadID = e.LeadID
	m.InvoiceID = e.InvoiceID
	m.PaymentID = e.PaymentID
	m.VendorName = e.VendorName
	m.Description = e.Description
	m.DocumentPath = e.DocumentPath
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain Entry.
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
