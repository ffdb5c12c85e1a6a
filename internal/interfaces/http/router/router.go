package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/fieldline/crm-backend/internal/infrastructure/auth"
	"github.com/fieldline/crm-backend/internal/infrastructure/config"
	"github.com/fieldline/crm-backend/internal/interfaces/http/handler"
	"github.com/fieldline/crm-backend/internal/interfaces/http/middleware"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Lead     *handler.LeadHandler
	Invoice  *handler.InvoiceHandler
	Ledger   *handler.LedgerHandler
	Campaign *handler.CampaignHandler
	Report   *handler.ReportHandler
	Webhook  *handler.WebhookHandler
	Import   *handler.ImportHandler
}

// New builds the gin engine with the full middleware chain and all
// routes mounted under /api/v1. Health, login and the webhook are the
// only routes reachable without a token.
func New(cfg *config.Config, logger *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			logger.Warn("invalid trusted proxy configuration", zap.Error(err))
		}
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.App.Name))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", h.Health.Health)

	api := engine.Group("/api/v1")

	// Public routes
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/webhook/leads", h.Webhook.CreateLead)

	// Everything else requires a valid token
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtService))

	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	users := authed.Group("/users")
	users.Use(middleware.RequireAdmin())
	{
		users.POST("", h.Auth.CreateUser)
		users.GET("", h.Auth.ListUsers)
		users.PATCH("/:id/active", h.Auth.SetUserActive)
	}

	leads := authed.Group("/leads")
	{
		leads.POST("", h.Lead.Create)
		leads.GET("", h.Lead.List)
		leads.GET("/bulk-upload/template", h.Import.Template)
		leads.POST("/bulk-upload", h.Import.BulkUpload)
		leads.GET("/:id", h.Lead.Get)
		leads.PUT("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
		leads.PATCH("/:id/viewed", h.Lead.MarkViewed)
		leads.POST("/:id/acknowledge", h.Lead.Acknowledge)
		leads.POST("/:id/notes", h.Lead.AddNote)
		leads.GET("/:id/notes", h.Lead.ListNotes)
		leads.DELETE("/:id/notes/:noteId", h.Lead.DeleteNote)
		leads.POST("/:id/documents", h.Lead.UploadDocument)
		leads.GET("/:id/documents", h.Lead.ListDocuments)
		leads.GET("/:id/documents/:documentId/download", h.Lead.DownloadDocument)
		leads.DELETE("/:id/documents/:documentId", h.Lead.DeleteDocument)
		leads.GET("/:id/activity", h.Lead.ListActivity)
		leads.GET("/:id/invoices", h.Invoice.ListByLead)
	}

	invoices := authed.Group("/invoices")
	{
		invoices.POST("", h.Invoice.Create)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.POST("/:id/payments", h.Invoice.AddPayment)
		invoices.GET("/:id/pdf", h.Invoice.DownloadPDF)
	}
	authed.DELETE("/invoice-payments/:paymentId", h.Invoice.DeletePayment)

	accounts := authed.Group("/accounts")
	{
		accounts.POST("", h.Ledger.RecordTransaction)
		accounts.GET("", h.Ledger.List)
		accounts.GET("/sum", h.Ledger.Sum)
		accounts.GET("/stats", h.Ledger.Stats)
		accounts.GET("/:id", h.Ledger.Get)
		accounts.PUT("/:id", h.Ledger.EditTransaction)
		accounts.DELETE("/:id", h.Ledger.Delete)
		accounts.POST("/:id/document", h.Ledger.AttachDocument)
		accounts.GET("/:id/document", h.Ledger.DownloadDocument)
	}

	campaigns := authed.Group("/campaigns")
	{
		campaigns.POST("", h.Campaign.Create)
		campaigns.GET("", h.Campaign.List)
		campaigns.GET("/:id", h.Campaign.Get)
		campaigns.PUT("/:id", h.Campaign.Update)
		campaigns.DELETE("/:id", h.Campaign.Delete)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/leads", h.Report.Leads)
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/marketing", h.Report.Marketing)
		reports.GET("/logs", h.Report.Logs)
	}

	return engine
}
