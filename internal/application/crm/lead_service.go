package crm

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
)

// LeadService provides application-level lead lifecycle operations
type LeadService struct {
	leadRepo       crm.LeadRepository
	activityRepo   crm.ActivityLogRepository
	noteRepo       crm.NoteRepository
	documentRepo   crm.DocumentRepository
	storage        BlobStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo crm.LeadRepository,
	activityRepo crm.ActivityLogRepository,
	noteRepo crm.NoteRepository,
	documentRepo crm.DocumentRepository,
	storage BlobStorage,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		noteRepo:     noteRepo,
		documentRepo: documentRepo,
		storage:      storage,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for notification fan-out
func (s *LeadService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateLeadRequest represents a request to create a lead
type CreateLeadRequest struct {
	Name           string     `json:"name" binding:"required"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone" binding:"required,phone"`
	City           string     `json:"city"`
	LeadSource     string     `json:"lead_source"`
	LeadStatus     string     `json:"lead_status"`
	AssignedUserID *uuid.UUID `json:"assigned_user_id"`
	CreatedBy      *uuid.UUID `json:"-"` // Set from JWT context, not from request body
}

// UpdateLeadRequest carries the fields of a lead update. Absent fields
// are untouched.
type UpdateLeadRequest struct {
	Name             *string    `json:"name"`
	Email            *string    `json:"email"`
	Phone            *string    `json:"phone"`
	City             *string    `json:"city"`
	AssignedUserID   *uuid.UUID `json:"assigned_user_id"`
	LeadStatus       *string    `json:"lead_status"`
	LeadSource       *string    `json:"lead_source"`
	LeadActiveStatus *bool      `json:"lead_active_status"`
	FollowupDate     *time.Time `json:"followup_date" time_format:"2006-01-02"`
	FollowupHour     *int       `json:"followup_hour"`
	FollowupMinute   *int       `json:"followup_minute"`
	FollowupPeriod   *string    `json:"followup_period"`
}

// LeadListFilter defines filtering options for lead list queries
type LeadListFilter struct {
	Search         string     `form:"search"`
	AssignedUserID *uuid.UUID `form:"assigned_user_id"`
	LeadStatus     string     `form:"lead_status"`
	LeadSource     string     `form:"lead_source"`
	City           string     `form:"city"`
	ActiveOnly     *bool      `form:"active_only"`
	FromDate       *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate         *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
	OrderBy        string     `form:"order_by"`
	OrderDir       string     `form:"order_dir"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	City               string     `json:"city"`
	AssignedUserID     *uuid.UUID `json:"assigned_user_id,omitempty"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	LeadStatus         string     `json:"lead_status"`
	LeadSource         string     `json:"lead_source"`
	LeadActiveStatus   bool       `json:"lead_active_status"`
	NotificationStatus bool       `json:"notification_status"`
	FollowupDate       *time.Time `json:"followup_date,omitempty"`
	FollowupHour       *int       `json:"followup_hour,omitempty"`
	FollowupMinute     *int       `json:"followup_minute,omitempty"`
	FollowupPeriod     *string    `json:"followup_period,omitempty"`
	WonAt              *time.Time `json:"won_at,omitempty"`
	ClosedAt           *time.Time `json:"closed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NoteResponse represents a lead note in API responses
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentResponse represents a lead document in API responses
type DocumentResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	UserID    uuid.UUID `json:"user_id"`
	FileName  string    `json:"file_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityLogResponse represents one activity log row in API responses
type ActivityLogResponse struct {
	ID           uuid.UUID      `json:"id"`
	LeadID       uuid.UUID      `json:"lead_id"`
	UserID       uuid.UUID      `json:"user_id"`
	ActivityType string         `json:"activity_type"`
	Details      map[string]any `json:"activity_details"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Create creates a new lead, applying creation defaults. A duplicate
// phone or email is a blocking conflict on this path; the bulk import
// path skips instead.
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest) (*LeadResponse, error) {
	exists, err := s.leadRepo.ExistsByPhoneOrEmail(ctx, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_LEAD", "A lead with this phone or email already exists")
	}

	lead, err := crm.NewLead(req.Name, req.Email, req.Phone, req.City,
		crm.LeadSource(req.LeadSource), crm.LeadStatus(req.LeadStatus))
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		lead.SetCreatedBy(*req.CreatedBy)
	}
	if req.AssignedUserID != nil {
		if err := lead.Assign(*req.AssignedUserID); err != nil {
			return nil, err
		}
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, lead.ID, actorOrNil(req.CreatedBy), crm.ActivityLeadCreated, map[string]any{
		"name":  lead.Name,
		"phone": lead.Phone,
	})
	s.publishEvents(ctx, lead)

	return toLeadResponse(lead), nil
}

// GetByID gets a lead by ID
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

// List lists leads with filtering
func (s *LeadService) List(ctx context.Context, filter LeadListFilter) ([]LeadResponse, int64, error) {
	domainFilter := crm.LeadFilter{
		AssignedUserID: filter.AssignedUserID,
		ActiveOnly:     filter.ActiveOnly,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
	}
	domainFilter.Search = filter.Search
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.LeadStatus != "" {
		status := crm.LeadStatus(filter.LeadStatus)
		domainFilter.LeadStatus = &status
	}
	if filter.LeadSource != "" {
		source := crm.LeadSource(filter.LeadSource)
		domainFilter.LeadSource = &source
	}
	if filter.City != "" {
		domainFilter.City = &filter.City
	}

	leads, err := s.leadRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.leadRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = *toLeadResponse(&leads[i])
	}

	return responses, total, nil
}

// Update diffs the request against the current lead, applies every
// changed field and appends one structured field_updated activity row
// covering the whole change set. Events fire only when something changed.
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req UpdateLeadRequest, actorID uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := crm.LeadUpdate{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		City:             req.City,
		AssignedUserID:   req.AssignedUserID,
		LeadActiveStatus: req.LeadActiveStatus,
		FollowupDate:     req.FollowupDate,
		FollowupHour:     req.FollowupHour,
		FollowupMinute:   req.FollowupMinute,
	}
	if req.LeadStatus != nil {
		status := crm.LeadStatus(*req.LeadStatus)
		update.LeadStatus = &status
	}
	if req.LeadSource != nil {
		source := crm.LeadSource(*req.LeadSource)
		update.LeadSource = &source
	}
	if req.FollowupPeriod != nil {
		period := crm.FollowupPeriod(*req.FollowupPeriod)
		update.FollowupPeriod = &period
	}

	changes, err := lead.ApplyUpdate(update)
	if err != nil {
		return nil, err
	}

	if len(changes) == 0 {
		return toLeadResponse(lead), nil
	}

	lead.SetUpdatedBy(actorID)
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}

	if log, err := crm.NewFieldUpdateLog(lead.ID, actorID, changes); err == nil {
		if err := s.activityRepo.Append(ctx, log); err != nil {
			s.logger.Warn("failed to append activity log", zap.String("lead_id", lead.ID.String()), zap.Error(err))
		}
	}
	s.publishEvents(ctx, lead)

	return toLeadResponse(lead), nil
}

// MarkViewed clears the unread flag when the assignee opens the lead.
// This path intentionally leaves no activity trail; the edit page calls
// it on every open.
func (s *LeadService) MarkViewed(ctx context.Context, id, actorID uuid.UUID) error {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := lead.MarkViewed(actorID); err != nil {
		return err
	}
	return s.leadRepo.Save(ctx, lead)
}

// MarkViewedWithLog clears the unread flag and records the acknowledgment
// in the activity trail. Used by the explicit "mark as viewed" action.
func (s *LeadService) MarkViewedWithLog(ctx context.Context, id, actorID uuid.UUID) error {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := lead.MarkViewed(actorID); err != nil {
		return err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return err
	}

	s.appendActivity(ctx, lead.ID, actorID, crm.ActivityFieldUpdated, map[string]any{
		"notification_status": crm.FieldChange{Old: true, New: false},
	})
	return nil
}

// Delete removes a lead, its stored documents, and all dependent rows
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	documents, err := s.documentRepo.FindByLead(ctx, id)
	if err != nil {
		return err
	}

	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Blob cleanup happens after the database cascade; a failed delete
	// leaves an orphaned object, not a dangling row.
	for _, doc := range documents {
		if err := s.storage.Delete(ctx, doc.FilePath); err != nil {
			s.logger.Warn("failed to delete lead document blob",
				zap.String("path", doc.FilePath), zap.Error(err))
		}
	}
	return nil
}

// AddNote attaches a note to a lead and records it in the activity trail
func (s *LeadService) AddNote(ctx context.Context, leadID, actorID uuid.UUID, content string) (*NoteResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}

	note, err := crm.NewNote(leadID, actorID, content)
	if err != nil {
		return nil, err
	}
	if err := s.noteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, leadID, actorID, crm.ActivityNoteAdded, map[string]any{
		"note_id": note.ID.String(),
	})

	return toNoteResponse(note), nil
}

// ListNotes lists the notes on a lead
func (s *LeadService) ListNotes(ctx context.Context, leadID uuid.UUID) ([]NoteResponse, error) {
	notes, err := s.noteRepo.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	responses := make([]NoteResponse, len(notes))
	for i := range notes {
		responses[i] = *toNoteResponse(&notes[i])
	}
	return responses, nil
}

// DeleteNote removes a note from a lead
func (s *LeadService) DeleteNote(ctx context.Context, noteID uuid.UUID) error {
	return s.noteRepo.Delete(ctx, noteID)
}

// UploadDocument stores an uploaded file and records it against the lead
func (s *LeadService) UploadDocument(ctx context.Context, leadID, actorID uuid.UUID, fileName string, content io.Reader, contentType string) (*DocumentResponse, error) {
	if _, err := s.leadRepo.FindByID(ctx, leadID); err != nil {
		return nil, err
	}

	path, err := s.storage.Store(ctx, NamespaceLeadDocuments, fileName, content, contentType)
	if err != nil {
		return nil, err
	}

	document, err := crm.NewDocument(leadID, actorID, fileName, path)
	if err != nil {
		return nil, err
	}
	if err := s.documentRepo.Save(ctx, document); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, leadID, actorID, crm.ActivityDocumentUploaded, map[string]any{
		"file_name": fileName,
	})

	return toDocumentResponse(document), nil
}

// ListDocuments lists a lead's documents
func (s *LeadService) ListDocuments(ctx context.Context, leadID uuid.UUID) ([]DocumentResponse, error) {
	documents, err := s.documentRepo.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	responses := make([]DocumentResponse, len(documents))
	for i := range documents {
		responses[i] = *toDocumentResponse(&documents[i])
	}
	return responses, nil
}

// DownloadDocument returns the stored bytes and file name of a document
func (s *LeadService) DownloadDocument(ctx context.Context, documentID uuid.UUID) ([]byte, string, error) {
	document, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.storage.Download(ctx, document.FilePath)
	if err != nil {
		return nil, "", err
	}
	return data, document.FileName, nil
}

// DeleteDocument removes a document record and its stored blob
func (s *LeadService) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	document, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, document.FilePath); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.String("path", document.FilePath), zap.Error(err))
	}
	return nil
}

// ListActivity lists the activity trail of a lead, newest first
func (s *LeadService) ListActivity(ctx context.Context, leadID uuid.UUID) ([]ActivityLogResponse, error) {
	logs, err := s.activityRepo.FindByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	responses := make([]ActivityLogResponse, len(logs))
	for i := range logs {
		responses[i] = *toActivityLogResponse(&logs[i])
	}
	return responses, nil
}

// appendActivity appends one audit row, logging instead of failing: the
// trail is best-effort relative to the primary mutation.
func (s *LeadService) appendActivity(ctx context.Context, leadID, userID uuid.UUID, activityType crm.ActivityType, details map[string]any) {
	log, err := crm.NewActivityLog(leadID, userID, activityType, details)
	if err != nil {
		s.logger.Warn("failed to build activity log", zap.Error(err))
		return
	}
	if err := s.activityRepo.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log",
			zap.String("lead_id", leadID.String()), zap.Error(err))
	}
}

func (s *LeadService) publishEvents(ctx context.Context, lead *crm.Lead) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range lead.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish lead event",
				zap.String("event_type", event.EventType()), zap.Error(err))
		}
	}
	lead.ClearDomainEvents()
}

func actorOrNil(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func toLeadResponse(l *crm.Lead) *LeadResponse {
	var period *string
	if l.FollowupPeriod != nil {
		p := string(*l.FollowupPeriod)
		period = &p
	}
	return &LeadResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		City:               l.City,
		AssignedUserID:     l.AssignedUserID,
		AssignedAt:         l.AssignedAt,
		LeadStatus:         string(l.LeadStatus),
		LeadSource:         string(l.LeadSource),
		LeadActiveStatus:   l.LeadActiveStatus,
		NotificationStatus: l.NotificationStatus,
		FollowupDate:       l.FollowupDate,
		FollowupHour:       l.FollowupHour,
		FollowupMinute:     l.FollowupMinute,
		FollowupPeriod:     period,
		WonAt:              l.WonAt,
		ClosedAt:           l.ClosedAt,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func toNoteResponse(n *crm.Note) *NoteResponse {
	return &NoteResponse{
		ID:        n.ID,
		LeadID:    n.LeadID,
		UserID:    n.UserID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
}

func toDocumentResponse(d *crm.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:        d.ID,
		LeadID:    d.LeadID,
		UserID:    d.UserID,
		FileName:  d.FileName,
		CreatedAt: d.CreatedAt,
	}
}

func toActivityLogResponse(a *crm.ActivityLog) *ActivityLogResponse {
	return &ActivityLogResponse{
		ID:           a.ID,
		LeadID:       a.LeadID,
		UserID:       a.UserID,
		ActivityType: string(a.ActivityType),
		Details:      a.Details,
		CreatedAt:    a.CreatedAt,
	}
}
