package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// LedgerEntrySortFields contains allowed sort fields for ledger entries
var LedgerEntrySortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"payment_type":     true,
	"payment_mode":     true,
	"transaction_type": true,
	"amount":           true,
	"transaction_date": true,
	"vendor_name":      true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"invoice_number":   true,
	"total_amount":     true,
	"amount_received":  true,
	"amount_remaining": true,
	"status":           true,
}

// LeadSortFields contains allowed sort fields for leads
var LeadSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"email":         true,
	"phone":         true,
	"city":          true,
	"lead_status":   true,
	"lead_source":   true,
	"assigned_at":   true,
	"followup_date": true,
	"won_at":        true,
}

// ActivityLogSortFields contains allowed sort fields for activity logs
var ActivityLogSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"activity_type": true,
}

// CampaignSortFields contains allowed sort fields for marketing campaigns
var CampaignSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"campaign_name": true,
	"cost":          true,
	"lead_source":   true,
	"start_date":    true,
	"end_date":      true,
}
