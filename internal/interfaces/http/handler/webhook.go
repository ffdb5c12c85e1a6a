package handler

import (
	"crypto/subtle"
	"io"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
)

// WebhookSecretHeader carries the shared secret on inbound webhook calls
const WebhookSecretHeader = "X-Webhook-Secret"

const maxWebhookBodySize = 64 << 10

// leadTextPattern matches a contact name followed by an international
// phone number anywhere in a free-text payload, e.g. "New enquiry from
// Ali Raza +923001234567 via form".
var leadTextPattern = regexp.MustCompile(`([\p{L}][\p{L} .'-]*[\p{L}])\s*[:,]?\s*(\+\d{7,15})`)

// WebhookHandler handles inbound lead-creation webhooks from external
// form providers. The payload is free text, not JSON.
type WebhookHandler struct {
	BaseHandler
	leadService *appcrm.LeadService
	secret      string
	logger      *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(leadService *appcrm.LeadService, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		leadService: leadService,
		secret:      secret,
		logger:      logger,
	}
}

// CreateLead handles POST /webhook/leads
func (h *WebhookHandler) CreateLead(c *gin.Context) {
	if h.secret == "" || subtle.ConstantTimeCompare(
		[]byte(c.GetHeader(WebhookSecretHeader)), []byte(h.secret)) != 1 {
		h.Unauthorized(c, "Invalid webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	name, phone, ok := parseLeadText(string(body))
	if !ok {
		h.BadRequest(c, "Payload does not contain a name and phone number")
		return
	}

	result, err := h.leadService.Create(c.Request.Context(), appcrm.CreateLeadRequest{
		Name:  name,
		Phone: phone,
	})
	if err != nil {
		h.logger.Warn("webhook lead rejected",
			zap.String("phone", phone),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}

	h.logger.Info("webhook lead created",
		zap.String("lead_id", result.ID.String()),
		zap.String("name", name))
	h.Created(c, result)
}

// parseLeadText extracts the first name/phone pair from a free-text
// webhook body
func parseLeadText(text string) (name, phone string, ok bool) {
	match := leadTextPattern.FindStringSubmatch(text)
	if match == nil {
		return "", "", false
	}
	return strings.TrimSpace(match[1]), match[2], true
}
