package crm

import (
	"strings"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadStatus represents where a lead sits in the sales pipeline
type LeadStatus string

const (
	LeadStatusInitialContact LeadStatus = "Initial Contact"
	LeadStatusQuery          LeadStatus = "Query"
	LeadStatusNegotiation    LeadStatus = "Negotiation"
	LeadStatusWon            LeadStatus = "Won"
	LeadStatusLost           LeadStatus = "Lost"
	LeadStatusNonPotential   LeadStatus = "Non-Potential"
	LeadStatusNoReply        LeadStatus = "No-Reply"
	LeadStatusCallBackLater  LeadStatus = "Call-Back-Later"
)

// IsValid checks if the status is a valid LeadStatus
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusInitialContact, LeadStatusQuery, LeadStatusNegotiation,
		LeadStatusWon, LeadStatusLost, LeadStatusNonPotential,
		LeadStatusNoReply, LeadStatusCallBackLater:
		return true
	}
	return false
}

// String returns the string representation of LeadStatus
func (s LeadStatus) String() string {
	return string(s)
}

// LeadSource represents the marketing channel a lead came through
type LeadSource string

const (
	LeadSourceFacebook  LeadSource = "Facebook"
	LeadSourceInstagram LeadSource = "Instagram"
	LeadSourceWebsite   LeadSource = "Website"
	LeadSourceWhatsApp  LeadSource = "WhatsApp"
	LeadSourceGoogle    LeadSource = "Google"
	LeadSourceReferral  LeadSource = "Referral"
	LeadSourceWalkIn    LeadSource = "Walk-In"
	LeadSourceOther     LeadSource = "Other"
)

// IsValid checks if the source is a valid LeadSource
func (s LeadSource) IsValid() bool {
	switch s {
	case LeadSourceFacebook, LeadSourceInstagram, LeadSourceWebsite,
		LeadSourceWhatsApp, LeadSourceGoogle, LeadSourceReferral,
		LeadSourceWalkIn, LeadSourceOther:
		return true
	}
	return false
}

// String returns the string representation of LeadSource
func (s LeadSource) String() string {
	return string(s)
}

// FollowupPeriod is the AM/PM half of a follow-up time
type FollowupPeriod string

const (
	FollowupPeriodAM FollowupPeriod = "AM"
	FollowupPeriodPM FollowupPeriod = "PM"
)

// IsValid checks if the period is valid
func (p FollowupPeriod) IsValid() bool {
	return p == FollowupPeriodAM || p == FollowupPeriodPM
}

// Default values applied at lead creation
const (
	DefaultCity       = "Others"
	DefaultLeadSource = LeadSourceFacebook
	DefaultLeadStatus = LeadStatusQuery

	// SyntheticEmailDomain is appended to the digits of the phone number
	// when a lead is created without an email address.
	SyntheticEmailDomain = "@test.com"
)

// SynthesizeEmail builds a placeholder email from the digits of a phone
// number. Leads without an email still need a unique value because the
// email column carries a unique constraint.
func SynthesizeEmail(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String() + SyntheticEmailDomain
}

// Lead is the sales prospect aggregate root
type Lead struct {
	shared.AuditedAggregateRoot
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	City               string          `json:"city"`
	AssignedUserID     *uuid.UUID      `json:"assigned_user_id"`
	AssignedAt         *time.Time      `json:"assigned_at"`
	LeadStatus         LeadStatus      `json:"lead_status"`
	LeadSource         LeadSource      `json:"lead_source"`
	LeadActiveStatus   bool            `json:"lead_active_status"`
	NotificationStatus bool            `json:"notification_status"` // true = unread for the assignee
	FollowupDate       *time.Time      `json:"followup_date"`
	FollowupHour       *int            `json:"followup_hour"`
	FollowupMinute     *int            `json:"followup_minute"`
	FollowupPeriod     *FollowupPeriod `json:"followup_period"`
	WonAt              *time.Time      `json:"won_at"`
	ClosedAt           *time.Time      `json:"closed_at"`
}

// NewLead creates a new lead, applying creation defaults and synthesizing
// an email from the phone number when none is supplied.
func NewLead(name, email, phone, city string, source LeadSource, status LeadStatus) (*Lead, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Lead name cannot be empty")
	}
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Lead phone cannot be empty")
	}
	if city == "" {
		city = DefaultCity
	}
	if source == "" {
		source = DefaultLeadSource
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEAD_SOURCE", "Lead source is not valid")
	}
	if status == "" {
		status = DefaultLeadStatus
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEAD_STATUS", "Lead status is not valid")
	}
	if email == "" {
		email = SynthesizeEmail(phone)
	}

	lead := &Lead{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		Name:                 name,
		Email:                email,
		Phone:                phone,
		City:                 city,
		LeadStatus:           status,
		LeadSource:           source,
		LeadActiveStatus:     true,
		NotificationStatus:   true,
	}

	lead.AddDomainEvent(NewLeadCreatedEvent(lead))

	return lead, nil
}

// FieldChange captures one tracked field's before and after values
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// LeadUpdate carries the fields of a tracked update. Nil pointers mean
// the field is untouched.
type LeadUpdate struct {
	Name             *string
	Email            *string
	Phone            *string
	City             *string
	AssignedUserID   *uuid.UUID
	LeadStatus       *LeadStatus
	LeadSource       *LeadSource
	LeadActiveStatus *bool
	FollowupDate     *time.Time
	FollowupHour     *int
	FollowupMinute   *int
	FollowupPeriod   *FollowupPeriod
}

// ApplyUpdate diffs the update against the current state, applies every
// changed field, and returns the structured change set for the activity
// log. Lifecycle side effects ride along with their fields: won_at and
// closed_at track status transitions, and a reassignment resets the
// unread flag for the new assignee.
func (l *Lead) ApplyUpdate(update LeadUpdate) (map[string]FieldChange, error) {
	changes := make(map[string]FieldChange)
	now := time.Now()

	if update.Name != nil && *update.Name != l.Name {
		if *update.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Lead name cannot be empty")
		}
		changes["name"] = FieldChange{Old: l.Name, New: *update.Name}
		l.Name = *update.Name
	}
	if update.Email != nil && *update.Email != l.Email {
		changes["email"] = FieldChange{Old: l.Email, New: *update.Email}
		l.Email = *update.Email
	}
	if update.Phone != nil && *update.Phone != l.Phone {
		if *update.Phone == "" {
			return nil, shared.NewDomainError("INVALID_PHONE", "Lead phone cannot be empty")
		}
		changes["phone"] = FieldChange{Old: l.Phone, New: *update.Phone}
		l.Phone = *update.Phone
	}
	if update.City != nil && *update.City != l.City {
		changes["city"] = FieldChange{Old: l.City, New: *update.City}
		l.City = *update.City
	}
	if update.LeadSource != nil && *update.LeadSource != l.LeadSource {
		if !update.LeadSource.IsValid() {
			return nil, shared.NewDomainError("INVALID_LEAD_SOURCE", "Lead source is not valid")
		}
		changes["lead_source"] = FieldChange{Old: l.LeadSource.String(), New: update.LeadSource.String()}
		l.LeadSource = *update.LeadSource
	}

	if update.LeadStatus != nil && *update.LeadStatus != l.LeadStatus {
		if !update.LeadStatus.IsValid() {
			return nil, shared.NewDomainError("INVALID_LEAD_STATUS", "Lead status is not valid")
		}
		old := l.LeadStatus
		changes["lead_status"] = FieldChange{Old: old.String(), New: update.LeadStatus.String()}
		l.LeadStatus = *update.LeadStatus

		if l.LeadStatus == LeadStatusWon {
			l.WonAt = &now
			l.AddDomainEvent(NewLeadWonEvent(l))
		} else if old == LeadStatusWon {
			l.WonAt = nil
		}
	}

	if update.LeadActiveStatus != nil && *update.LeadActiveStatus != l.LeadActiveStatus {
		changes["lead_active_status"] = FieldChange{Old: l.LeadActiveStatus, New: *update.LeadActiveStatus}
		l.LeadActiveStatus = *update.LeadActiveStatus
		if l.LeadActiveStatus {
			l.ClosedAt = nil
		} else {
			l.ClosedAt = &now
			l.AddDomainEvent(NewLeadClosedEvent(l))
		}
	}

	if update.AssignedUserID != nil {
		current := uuid.Nil
		if l.AssignedUserID != nil {
			current = *l.AssignedUserID
		}
		if *update.AssignedUserID != current {
			changes["assigned_user_id"] = FieldChange{Old: current.String(), New: update.AssignedUserID.String()}
			l.AssignedUserID = update.AssignedUserID
			l.AssignedAt = &now
			l.NotificationStatus = true
			l.AddDomainEvent(NewLeadAssignedEvent(l))
		}
	}

	if err := l.applyFollowupUpdate(update, changes); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		l.UpdatedAt = now
		l.AddDomainEvent(NewLeadUpdatedEvent(l, changes))
	}

	return changes, nil
}

func (l *Lead) applyFollowupUpdate(update LeadUpdate, changes map[string]FieldChange) error {
	if update.FollowupHour != nil && (*update.FollowupHour < 1 || *update.FollowupHour > 12) {
		return shared.NewDomainError("INVALID_FOLLOWUP", "Follow-up hour must be between 1 and 12")
	}
	if update.FollowupMinute != nil && (*update.FollowupMinute < 0 || *update.FollowupMinute > 59) {
		return shared.NewDomainError("INVALID_FOLLOWUP", "Follow-up minute must be between 0 and 59")
	}
	if update.FollowupPeriod != nil && !update.FollowupPeriod.IsValid() {
		return shared.NewDomainError("INVALID_FOLLOWUP", "Follow-up period must be AM or PM")
	}

	scheduled := false
	if update.FollowupDate != nil && !timePtrEqual(update.FollowupDate, l.FollowupDate) {
		changes["followup_date"] = FieldChange{Old: formatTimePtr(l.FollowupDate), New: update.FollowupDate.Format("2006-01-02")}
		l.FollowupDate = update.FollowupDate
		scheduled = true
	}
	if update.FollowupHour != nil && !intPtrEqual(update.FollowupHour, l.FollowupHour) {
		changes["followup_hour"] = FieldChange{Old: l.FollowupHour, New: *update.FollowupHour}
		l.FollowupHour = update.FollowupHour
		scheduled = true
	}
	if update.FollowupMinute != nil && !intPtrEqual(update.FollowupMinute, l.FollowupMinute) {
		changes["followup_minute"] = FieldChange{Old: l.FollowupMinute, New: *update.FollowupMinute}
		l.FollowupMinute = update.FollowupMinute
		scheduled = true
	}
	if update.FollowupPeriod != nil && (l.FollowupPeriod == nil || *update.FollowupPeriod != *l.FollowupPeriod) {
		old := ""
		if l.FollowupPeriod != nil {
			old = string(*l.FollowupPeriod)
		}
		changes["followup_period"] = FieldChange{Old: old, New: string(*update.FollowupPeriod)}
		l.FollowupPeriod = update.FollowupPeriod
		scheduled = true
	}

	if scheduled {
		l.AddDomainEvent(NewFollowupScheduledEvent(l))
	}
	return nil
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Assign moves the lead to a new owner and flags it unread for them
func (l *Lead) Assign(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Assignee user ID cannot be empty")
	}
	now := time.Now()
	l.AssignedUserID = &userID
	l.AssignedAt = &now
	l.NotificationStatus = true
	l.UpdatedAt = now
	l.AddDomainEvent(NewLeadAssignedEvent(l))
	return nil
}

// MarkViewed clears the unread flag. Only the current assignee may do
// this; anyone else gets a forbidden error.
func (l *Lead) MarkViewed(actorID uuid.UUID) error {
	if l.AssignedUserID == nil || *l.AssignedUserID != actorID {
		return shared.ErrForbidden
	}
	l.NotificationStatus = false
	l.Touch()
	return nil
}

// IsWon returns true if the lead is in the Won status
func (l *Lead) IsWon() bool {
	return l.LeadStatus == LeadStatusWon
}

// IsActive returns true if the lead is still open
func (l *Lead) IsActive() bool {
	return l.LeadActiveStatus
}
