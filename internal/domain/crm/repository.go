package crm

import (
	"context"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadFilter defines filtering options for lead queries
type LeadFilter struct {
	shared.Filter
	AssignedUserID *uuid.UUID  // Filter by assignee
	LeadStatus     *LeadStatus // Filter by pipeline status
	LeadSource     *LeadSource // Filter by channel
	ActiveOnly     *bool       // Filter by active flag
	City           *string     // Filter by city
	FromDate       *time.Time  // Filter by creation date range start
	ToDate         *time.Time  // Filter by creation date range end
}

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByID finds a lead by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// FindByPhone finds a lead by its unique phone number
	FindByPhone(ctx context.Context, phone string) (*Lead, error)

	// FindByEmail finds a lead by its unique email
	FindByEmail(ctx context.Context, email string) (*Lead, error)

	// FindAll finds leads with filtering. Search matches name, phone and email.
	FindAll(ctx context.Context, filter LeadFilter) ([]Lead, error)

	// Save creates or updates a lead
	Save(ctx context.Context, lead *Lead) error

	// Delete removes a lead and cascades to its notes, documents and logs
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts leads matching the filter
	Count(ctx context.Context, filter LeadFilter) (int64, error)

	// ExistsByPhoneOrEmail reports whether any lead already holds either value
	ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error)
}

// ActivityLogFilter defines filtering options for activity log queries
type ActivityLogFilter struct {
	shared.Filter
	LeadID       *uuid.UUID    // Filter by lead
	UserID       *uuid.UUID    // Filter by acting user
	ActivityType *ActivityType // Filter by entry type
	FromDate     *time.Time    // Filter by creation date range start
	ToDate       *time.Time    // Filter by creation date range end
}

// ActivityLogRepository defines the interface for the append-only audit trail
type ActivityLogRepository interface {
	// Append stores a new activity log entry
	Append(ctx context.Context, log *ActivityLog) error

	// FindAll finds activity log entries with filtering
	FindAll(ctx context.Context, filter ActivityLogFilter) ([]ActivityLog, error)

	// FindByLead finds all entries for a lead, newest first
	FindByLead(ctx context.Context, leadID uuid.UUID) ([]ActivityLog, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter ActivityLogFilter) (int64, error)

	// CountLeadsHandled counts distinct (lead, calendar day) pairs in the
	// period: several activities on one lead in one day count once.
	CountLeadsHandled(ctx context.Context, from, to time.Time, userID *uuid.UUID) (int64, error)
}

// NoteRepository defines the interface for lead note persistence
type NoteRepository interface {
	FindByLead(ctx context.Context, leadID uuid.UUID) ([]Note, error)
	Save(ctx context.Context, note *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentRepository defines the interface for lead document persistence
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByLead(ctx context.Context, leadID uuid.UUID) ([]Document, error)
	Save(ctx context.Context, document *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}
