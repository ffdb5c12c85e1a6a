package handler

import (
	"github.com/gin-gonic/gin"

	appmarketing "github.com/fieldline/crm-backend/internal/application/marketing"
)

// CampaignHandler handles marketing campaign endpoints
type CampaignHandler struct {
	BaseHandler
	campaignService *appmarketing.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *appmarketing.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// Create handles POST /campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	var req appmarketing.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if actorID, err := getUserID(c); err == nil {
		req.CreatedBy = &actorID
	}

	result, err := h.campaignService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Get handles GET /campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	result, err := h.campaignService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	var filter appmarketing.CampaignListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	campaigns, total, err := h.campaignService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, campaigns, total, filter.Page, filter.PageSize)
}

// Update handles PUT /campaigns/:id
func (h *CampaignHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req appmarketing.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.campaignService.Update(c.Request.Context(), id, req, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete handles DELETE /campaigns/:id
func (h *CampaignHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.campaignService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
