package crm

import (
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Note is a free-form remark attached to a lead
type Note struct {
	shared.BaseEntity
	LeadID  uuid.UUID `json:"lead_id"`
	UserID  uuid.UUID `json:"user_id"`
	Content string    `json:"content"`
}

// NewNote creates a new lead note
func NewNote(leadID, userID uuid.UUID, content string) (*Note, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if content == "" {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note content cannot be empty")
	}
	return &Note{
		BaseEntity: shared.NewBaseEntity(),
		LeadID:     leadID,
		UserID:     userID,
		Content:    content,
	}, nil
}

// Document is an uploaded file attached to a lead
type Document struct {
	shared.BaseEntity
	LeadID   uuid.UUID `json:"lead_id"`
	UserID   uuid.UUID `json:"user_id"`
	FileName string    `json:"file_name"`
	FilePath string    `json:"file_path"`
}

// NewDocument creates a new lead document record
func NewDocument(leadID, userID uuid.UUID, fileName, filePath string) (*Document, error) {
	if leadID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEAD", "Lead ID cannot be empty")
	}
	if fileName == "" || filePath == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document name and path are required")
	}
	return &Document{
		BaseEntity: shared.NewBaseEntity(),
		LeadID:     leadID,
		UserID:     userID,
		FileName:   fileName,
		FilePath:   filePath,
	}, nil
}
