package crm

import (
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType classifies a lead activity log entry
type ActivityType string

const (
	ActivityLeadCreated       ActivityType = "lead_created"
	ActivityNoteAdded         ActivityType = "note_added"
	ActivityDocumentUploaded  ActivityType = "document_uploaded"
	ActivityStatusUpdated     ActivityType = "status_updated"
	ActivityFieldUpdated      ActivityType = "field_updated"
	ActivityLeadAssigned      ActivityType = "lead_assigned"
	ActivityLeadClosed        ActivityType = "lead_closed"
	ActivityLeadWon           ActivityType = "lead_won"
	ActivityFollowupScheduled ActivityType = "followup_scheduled"
)

// IsValid checks if the activity type is valid
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityLeadCreated, ActivityNoteAdded, ActivityDocumentUploaded, ActivityStatusUpdated,
		ActivityFieldUpdated, ActivityLeadAssigned, ActivityLeadClosed,
		ActivityLeadWon, ActivityFollowupScheduled:
		return true
	}
	return false
}

// String returns the string representation of ActivityType
func (t ActivityType) String() string {
	return string(t)
}

// ActivityLog is one append-only audit row on a lead. Entries are never
// updated or deleted; they go away only when their lead does.
type ActivityLog struct {
	shared.BaseEntity
	LeadID       uuid.UUID      `json:"lead_id"`
	UserID       uuid.UUID      `json:"user_id"`
	ActivityType ActivityType   `json:"activity_type"`
	Details      map[string]any `json:"activity_details"`
}

// NewActivityLog creates a new activity log entry
func NewActivityLog(leadID, userID uuid.UUID, activityType ActivityType, details map[string]any) (*ActivityLog, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if !activityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTIVITY_TYPE", "Activity type is not valid")
	}
	return &ActivityLog{
		BaseEntity:   shared.NewBaseEntity(),
		LeadID:       leadID,
		UserID:       userID,
		ActivityType: activityType,
		Details:      details,
	}, nil
}

// NewFieldUpdateLog creates a field_updated entry from a change set
func NewFieldUpdateLog(leadID, userID uuid.UUID, changes map[string]FieldChange) (*ActivityLog, error) {
	details := make(map[string]any, len(changes))
	for field, change := range changes {
		details[field] = change
	}
	return NewActivityLog(leadID, userID, ActivityFieldUpdated, details)
}
