package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appreport "github.com/fieldline/crm-backend/internal/application/report"
)

// ReportHandler handles the reporting endpoints. All four reports share
// the same query shape and default to the current calendar month.
type ReportHandler struct {
	BaseHandler
	reportService *appreport.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *appreport.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Leads handles GET /reports/leads
func (h *ReportHandler) Leads(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query appreport.ReportQuery) (any, error) {
		return h.reportService.Leads(ctx, query)
	})
}

// Sales handles GET /reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query appreport.ReportQuery) (any, error) {
		return h.reportService.Sales(ctx, query)
	})
}

// Marketing handles GET /reports/marketing
func (h *ReportHandler) Marketing(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query appreport.ReportQuery) (any, error) {
		return h.reportService.Marketing(ctx, query)
	})
}

// Logs handles GET /reports/logs
func (h *ReportHandler) Logs(c *gin.Context) {
	h.serve(c, func(ctx context.Context, query appreport.ReportQuery) (any, error) {
		return h.reportService.Logs(ctx, query)
	})
}

func (h *ReportHandler) serve(c *gin.Context, build func(context.Context, appreport.ReportQuery) (any, error)) {
	var query appreport.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := build(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
