package models

import (
	"encoding/json"
	"time"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadModel is the persistence model for the Lead aggregate root.
type LeadModel struct {
	AuditedAggregateModel
	Name               string              `gorm:"type:varchar(200);not null;index"`
	Email              string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone              string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	City               string              `gorm:"type:varchar(100);not null;default:'Others'"`
	AssignedUserID     *uuid.UUID          `gorm:"type:uuid;index"`
	AssignedAt         *time.Time
	LeadStatus         crm.LeadStatus `gorm:"type:varchar(30);not null;index"`
	LeadSource         crm.LeadSource `gorm:"type:varchar(30);not null;index"`
	LeadActiveStatus   bool           `gorm:"not null;default:true;index"`
	NotificationStatus bool           `gorm:"not null;default:true"`
	FollowupDate       *time.Time     `gorm:"index"`
	FollowupHour       *int
	FollowupMinute     *int
	FollowupPeriod     *crm.FollowupPeriod `gorm:"type:varchar(2)"`
	WonAt              *time.Time          `gorm:"index"`
	ClosedAt           *time.Time
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *crm.Lead {
	lead := &crm.Lead{
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		City:               m.City,
		AssignedUserID:     m.AssignedUserID,
		AssignedAt:         m.AssignedAt,
		LeadStatus:         m.LeadStatus,
		LeadSource:         m.LeadSource,
		LeadActiveStatus:   m.LeadActiveStatus,
		NotificationStatus: m.NotificationStatus,
		FollowupDate:       m.FollowupDate,
		FollowupHour:       m.FollowupHour,
		FollowupMinute:     m.FollowupMinute,
		FollowupPeriod:     m.FollowupPeriod,
		WonAt:              m.WonAt,
		ClosedAt:           m.ClosedAt,
	}
	m.PopulateAuditedAggregateRoot(&lead.AuditedAggregateRoot)
	return lead
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *crm.Lead) {
	m.FromDomainAuditedAggregateRoot(l.AuditedAggregateRoot)
	m.Name = l.Name
	m.Email = l.Email
	m.Phone = l.Phone
	m.City = l.City
	m.AssignedUserID = l.AssignedUserID
	m.AssignedAt = l.AssignedAt
	m.LeadStatus = l.LeadStatus
	m.LeadSource = l.LeadSource
	m.LeadActiveStatus = l.LeadActiveStatus
	m.NotificationStatus = l.NotificationStatus
	m.FollowupDate = l.FollowupDate
	m.FollowupHour = l.FollowupHour
	m.FollowupMinute = l.FollowupMinute
	m.FollowupPeriod = l.FollowupPeriod
	m.WonAt = l.WonAt
	m.ClosedAt = l.ClosedAt
}

// LeadModelFromDomain creates a new persistence model from a domain Lead.
func LeadModelFromDomain(l *crm.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}

// ActivityLogModel is the persistence model for lead activity log entries.
// Details are stored as a JSON document.
type ActivityLogModel struct {
	BaseModel
	LeadID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	ActivityType crm.ActivityType `gorm:"type:varchar(30);not null;index"`
	Details      string           `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "lead_activity_logs"
}

// ToDomain converts the persistence model to a domain ActivityLog entity.
func (m *ActivityLogModel) ToDomain() *crm.ActivityLog {
	details := make(map[string]any)
	if m.Details != "" {
		// Rows written by this application always hold valid JSON.
		_ = json.Unmarshal([]byte(m.Details), &details)
	}
	return &crm.ActivityLog{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LeadID:       m.LeadID,
		UserID:       m.UserID,
		ActivityType: m.ActivityType,
		Details:      details,
	}
}

// FromDomain populates the persistence model from a domain ActivityLog entity.
func (m *ActivityLogModel) FromDomain(log *crm.ActivityLog) error {
	m.FromDomainBaseEntity(log.BaseEntity)
	m.LeadID = log.LeadID
	m.UserID = log.UserID
	m.ActivityType = log.ActivityType
	if log.Details == nil {
		m.Details = "{}"
		return nil
	}
	data, err := json.Marshal(log.Details)
	if err != nil {
		return err
	}
	m.Details = string(data)
	return nil
}

// ActivityLogModelFromDomain creates a new persistence model from a domain ActivityLog.
func ActivityLogModelFromDomain(log *crm.ActivityLog) (*ActivityLogModel, error) {
	m := &ActivityLogModel{}
	if err := m.FromDomain(log); err != nil {
		return nil, err
	}
	return m, nil
}

// LeadNoteModel is the persistence model for lead notes.
type LeadNoteModel struct {
	BaseModel
	LeadID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null"`
	Content string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (LeadNoteModel) TableName() string {
	return "lead_notes"
}

// ToDomain converts the persistence model to a domain Note entity.
func (m *LeadNoteModel) ToDomain() *crm.Note {
	return &crm.Note{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LeadID:  m.LeadID,
		UserID:  m.UserID,
		Content: m.Content,
	}
}

// LeadNoteModelFromDomain creates a new persistence model from a domain Note.
func LeadNoteModelFromDomain(n *crm.Note) *LeadNoteModel {
	m := &LeadNoteModel{}
	m.FromDomainBaseEntity(n.BaseEntity)
	m.LeadID = n.LeadID
	m.UserID = n.UserID
	m.Content = n.Content
	return m
}

// LeadDocumentModel is the persistence model for uploaded lead documents.
type LeadDocumentModel struct {
	BaseModel
	LeadID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID   uuid.UUID `gorm:"type:uuid;not null"`
	FileName string    `gorm:"type:varchar(255);not null"`
	FilePath string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (LeadDocumentModel) TableName() string {
	return "lead_documents"
}

// ToDomain converts the persistence model to a domain Document entity.
func (m *LeadDocumentModel) ToDomain() *crm.Document {
	return &crm.Document{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LeadID:   m.LeadID,
		UserID:   m.UserID,
		FileName: m.FileName,
		FilePath: m.FilePath,
	}
}

// LeadDocumentModelFromDomain creates a new persistence model from a domain Document.
func LeadDocumentModelFromDomain(d *crm.Document) *LeadDocumentModel {
	m := &LeadDocumentModel{}
	m.FromDomainBaseEntity(d.BaseEntity)
	m.LeadID = d.LeadID
	m.UserID = d.UserID
	m.FileName = d.FileName
	m.FilePath = d.FilePath
	return m
}
