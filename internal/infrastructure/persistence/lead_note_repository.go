package persistence

import (
	"context"
	"errors"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadNoteRepository implements crm.NoteRepository using GORM
type GormLeadNoteRepository struct {
	db *gorm.DB
}

// NewGormLeadNoteRepository creates a new GormLeadNoteRepository
func NewGormLeadNoteRepository(db *gorm.DB) *GormLeadNoteRepository {
	return &GormLeadNoteRepository{db: db}
}

// FindByLead finds all notes for a lead, newest first
func (r *GormLeadNoteRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.Note, error) {
	var noteModels []models.LeadNoteModel
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&noteModels).Error; err != nil {
		return nil, err
	}
	notes := make([]crm.Note, len(noteModels))
	for i, model := range noteModels {
		notes[i] = *model.ToDomain()
	}
	return notes, nil
}

// Save creates or updates a note
func (r *GormLeadNoteRepository) Save(ctx context.Context, note *crm.Note) error {
	model := models.LeadNoteModelFromDomain(note)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a note
func (r *GormLeadNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadNoteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormLeadDocumentRepository implements crm.DocumentRepository using GORM
type GormLeadDocumentRepository struct {
	db *gorm.DB
}

// NewGormLeadDocumentRepository creates a new GormLeadDocumentRepository
func NewGormLeadDocumentRepository(db *gorm.DB) *GormLeadDocumentRepository {
	return &GormLeadDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormLeadDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Document, error) {
	var model models.LeadDocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLead finds all documents for a lead, newest first
func (r *GormLeadDocumentRepository) FindByLead(ctx context.Context, leadID uuid.UUID) ([]crm.Document, error) {
	var docModels []models.LeadDocumentModel
	if err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&docModels).Error; err != nil {
		return nil, err
	}
	docs := make([]crm.Document, len(docModels))
	for i, model := range docModels {
		docs[i] = *model.ToDomain()
	}
	return docs, nil
}

// Save creates or updates a document record
func (r *GormLeadDocumentRepository) Save(ctx context.Context, document *crm.Document) error {
	model := models.LeadDocumentModelFromDomain(document)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a document record
func (r *GormLeadDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LeadDocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
