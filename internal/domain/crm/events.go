package crm

import (
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadCreatedEvent is raised when a new lead enters the system
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	LeadID         uuid.UUID  `json:"lead_id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	LeadSource     LeadSource `json:"lead_source"`
	AssignedUserID *uuid.UUID `json:"assigned_user_id,omitempty"`
}

// EventType returns the event type name
func (e *LeadCreatedEvent) EventType() string {
	return "LeadCreated"
}

// NewLeadCreatedEvent creates a new LeadCreatedEvent
func NewLeadCreatedEvent(lead *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadCreated", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
		Phone:           lead.Phone,
		LeadSource:      lead.LeadSource,
		AssignedUserID:  lead.AssignedUserID,
	}
}

// LeadUpdatedEvent is raised when at least one tracked field changed
type LeadUpdatedEvent struct {
	shared.BaseDomainEvent
	LeadID         uuid.UUID              `json:"lead_id"`
	Name           string                 `json:"name"`
	AssignedUserID *uuid.UUID             `json:"assigned_user_id,omitempty"`
	Changes        map[string]FieldChange `json:"changes"`
}

// EventType returns the event type name
func (e *LeadUpdatedEvent) EventType() string {
	return "LeadUpdated"
}

// NewLeadUpdatedEvent creates a new LeadUpdatedEvent
func NewLeadUpdatedEvent(lead *Lead, changes map[string]FieldChange) *LeadUpdatedEvent {
	return &LeadUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadUpdated", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
		AssignedUserID:  lead.AssignedUserID,
		Changes:         changes,
	}
}

// LeadAssignedEvent is raised when a lead changes owner
type LeadAssignedEvent struct {
	shared.BaseDomainEvent
	LeadID         uuid.UUID  `json:"lead_id"`
	Name           string     `json:"name"`
	AssignedUserID *uuid.UUID `json:"assigned_user_id"`
}

// EventType returns the event type name
func (e *LeadAssignedEvent) EventType() string {
	return "LeadAssigned"
}

// NewLeadAssignedEvent creates a new LeadAssignedEvent
func NewLeadAssignedEvent(lead *Lead) *LeadAssignedEvent {
	return &LeadAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadAssigned", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
		AssignedUserID:  lead.AssignedUserID,
	}
}

// LeadWonEvent is raised when a lead transitions into Won
type LeadWonEvent struct {
	shared.BaseDomainEvent
	LeadID uuid.UUID `json:"lead_id"`
	Name   string    `json:"name"`
}

// EventType returns the event type name
func (e *LeadWonEvent) EventType() string {
	return "LeadWon"
}

// NewLeadWonEvent creates a new LeadWonEvent
func NewLeadWonEvent(lead *Lead) *LeadWonEvent {
	return &LeadWonEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadWon", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
	}
}

// LeadClosedEvent is raised when a lead is deactivated
type LeadClosedEvent struct {
	shared.BaseDomainEvent
	LeadID uuid.UUID `json:"lead_id"`
	Name   string    `json:"name"`
}

// EventType returns the event type name
func (e *LeadClosedEvent) EventType() string {
	return "LeadClosed"
}

// NewLeadClosedEvent creates a new LeadClosedEvent
func NewLeadClosedEvent(lead *Lead) *LeadClosedEvent {
	return &LeadClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadClosed", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
	}
}

// FollowupScheduledEvent is raised when follow-up timing changes
type FollowupScheduledEvent struct {
	shared.BaseDomainEvent
	LeadID         uuid.UUID  `json:"lead_id"`
	Name           string     `json:"name"`
	AssignedUserID *uuid.UUID `json:"assigned_user_id,omitempty"`
}

// EventType returns the event type name
func (e *FollowupScheduledEvent) EventType() string {
	return "LeadFollowupScheduled"
}

// NewFollowupScheduledEvent creates a new FollowupScheduledEvent
func NewFollowupScheduledEvent(lead *Lead) *FollowupScheduledEvent {
	return &FollowupScheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LeadFollowupScheduled", "Lead", lead.ID),
		LeadID:          lead.ID,
		Name:            lead.Name,
		AssignedUserID:  lead.AssignedUserID,
	}
}
