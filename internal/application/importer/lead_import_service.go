package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/domain/crm"
	"github.com/fieldline/crm-backend/internal/domain/shared"
	csvimport "github.com/fieldline/crm-backend/internal/infrastructure/importer"
)

// Config carries the defaults applied to imported rows. It is passed
// explicitly with every import call and never stored as process state.
type Config struct {
	DefaultCity   string
	DefaultSource string
	MaxRows       int
}

// Result summarizes one bulk import run. Rows that collide with an
// existing lead's phone or email are skipped and counted, not errors.
type Result struct {
	SuccessCount int      `json:"success_count"`
	SkippedCount int      `json:"skipped_count"`
	FailedRows   []string `json:"failed_rows,omitempty"`
}

// LeadImportService imports leads from uploaded CSV spreadsheets
type LeadImportService struct {
	leadRepo       crm.LeadRepository
	activityRepo   crm.ActivityLogRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLeadImportService creates a new LeadImportService
func NewLeadImportService(
	leadRepo crm.LeadRepository,
	activityRepo crm.ActivityLogRepository,
	logger *zap.Logger,
) *LeadImportService {
	return &LeadImportService{
		leadRepo:     leadRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for notification fan-out
func (s *LeadImportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// TemplateCSV returns the CSV template users fill in for bulk upload
func TemplateCSV() []byte {
	return []byte("name,phone,email,city,lead_source,lead_status\n" +
		"Ali Raza,+923001234567,,Lahore,Facebook,Query\n")
}

// Import parses the uploaded CSV and creates one lead per data row.
// A hard parse failure of the file aborts the batch; per-row conflicts
// skip and continue. Imported leads start with the unread flag cleared
// so a bulk upload does not flood assignees with notifications.
func (s *LeadImportService) Import(ctx context.Context, file io.Reader, cfg Config) (*Result, error) {
	parser, err := csvimport.NewCSVParser(file)
	if err != nil {
		return nil, toImportError(err)
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, toImportError(err)
	}
	if !parser.HasHeader("name") || !parser.HasHeader("phone") {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "CSV must have name and phone columns")
	}

	rows, err := parser.ReadAll(cfg.MaxRows)
	if err != nil {
		return nil, toImportError(err)
	}

	result := &Result{}

	for _, row := range rows {
		name := strings.TrimSpace(row.Get("name"))
		phone := strings.TrimSpace(row.Get("phone"))
		email := strings.TrimSpace(row.Get("email"))

		if name == "" || phone == "" {
			result.FailedRows = append(result.FailedRows, rowError(row.LineNumber, "name and phone are required"))
			continue
		}

		exists, err := s.leadRepo.ExistsByPhoneOrEmail(ctx, phone, email)
		if err != nil {
			return nil, err
		}
		if exists {
			result.SkippedCount++
			continue
		}

		lead, err := crm.NewLead(
			name,
			email,
			phone,
			row.GetOrDefault("city", cfg.DefaultCity),
			crm.LeadSource(row.GetOrDefault("lead_source", cfg.DefaultSource)),
			crm.LeadStatus(row.Get("lead_status")),
		)
		if err != nil {
			result.FailedRows = append(result.FailedRows, rowError(row.LineNumber, err.Error()))
			continue
		}

		// Imported leads arrive already read.
		lead.NotificationStatus = false

		if err := s.leadRepo.Save(ctx, lead); err != nil {
			// Unique-constraint race with a row earlier in this batch
			// or a concurrent create counts as a skip, same as the
			// upfront check.
			result.SkippedCount++
			s.logger.Debug("import row skipped on save",
				zap.Int("line", row.LineNumber), zap.Error(err))
			continue
		}

		result.SuccessCount++

		if log, err := crm.NewActivityLog(lead.ID, uuid.Nil, crm.ActivityLeadCreated, map[string]any{
			"imported": true,
		}); err == nil {
			if err := s.activityRepo.Append(ctx, log); err != nil {
				s.logger.Warn("failed to append import activity log", zap.Error(err))
			}
		}

		s.publishEvents(ctx, lead)
	}

	s.logger.Info("lead import completed",
		zap.Int("created", result.SuccessCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", len(result.FailedRows)))

	return result, nil
}

func (s *LeadImportService) publishEvents(ctx context.Context, lead *crm.Lead) {
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

func toImportError(err error) error {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		return shared.NewDomainError("EMPTY_FILE", "The uploaded file is empty")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		return shared.NewDomainError("INVALID_ENCODING", "The uploaded file is not valid UTF-8")
	case errors.Is(err, csvimport.ErrMissingHeader):
		return shared.NewDomainError("INVALID_TEMPLATE", "The uploaded file has no header row")
	case errors.Is(err, csvimport.ErrFileTooLarge):
		return shared.NewDomainError("FILE_TOO_LARGE", "The uploaded file has too many rows")
	default:
		return shared.NewDomainError("PARSE_FAILED", "The uploaded file could not be parsed")
	}
}

func rowError(line int, msg string) string {
	return fmt.Sprintf("line %d: %s", line, msg)
}
