package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/fieldline/crm-backend/internal/application/billing"
	appcrm "github.com/fieldline/crm-backend/internal/application/crm"
	appidentity "github.com/fieldline/crm-backend/internal/application/identity"
	appimporter "github.com/fieldline/crm-backend/internal/application/importer"
	appledger "github.com/fieldline/crm-backend/internal/application/ledger"
	appmarketing "github.com/fieldline/crm-backend/internal/application/marketing"
	appreport "github.com/fieldline/crm-backend/internal/application/report"
	"github.com/fieldline/crm-backend/internal/infrastructure/auth"
	"github.com/fieldline/crm-backend/internal/infrastructure/config"
	"github.com/fieldline/crm-backend/internal/infrastructure/event"
	"github.com/fieldline/crm-backend/internal/infrastructure/logger"
	"github.com/fieldline/crm-backend/internal/infrastructure/notify"
	"github.com/fieldline/crm-backend/internal/infrastructure/persistence"
	"github.com/fieldline/crm-backend/internal/infrastructure/printing"
	"github.com/fieldline/crm-backend/internal/infrastructure/storage"
	"github.com/fieldline/crm-backend/internal/infrastructure/telemetry"
	"github.com/fieldline/crm-backend/internal/interfaces/http/handler"
	"github.com/fieldline/crm-backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry.DBTraceEnabled, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	noteRepo := persistence.NewGormLeadNoteRepository(db.DB)
	documentRepo := persistence.NewGormLeadDocumentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus with Redis fan-out for UI notifications
	eventBus := event.NewInMemoryEventBus(log)
	notifier := notify.NewRedisNotifier(cfg.Redis, log)
	defer func() {
		if err := notifier.Close(); err != nil {
			log.Error("Error closing notifier", zap.Error(err))
		}
	}()
	if err := notifier.Ping(ctx); err != nil {
		log.Warn("Redis unreachable, notifications will be dropped", zap.Error(err))
	}
	eventBus.Subscribe(notifier, notifier.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eventBus.Stop(stopCtx)
	}()

	// Blob storage
	blobStorage, err := newBlobStorage(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob storage", zap.Error(err))
	}
	log.Info("Blob storage ready", zap.String("provider", cfg.Storage.Provider))

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)

	leadService := appcrm.NewLeadService(leadRepo, activityRepo, noteRepo, documentRepo, blobStorage, log)
	leadService.SetEventPublisher(eventBus)

	invoiceService := appbilling.NewInvoiceService(txScope, invoiceRepo, ledgerRepo, log)
	invoiceService.SetEventPublisher(eventBus)

	ledgerService := appledger.NewLedgerService(ledgerRepo, blobStorage)
	campaignService := appmarketing.NewCampaignService(campaignRepo)
	reportService := appreport.NewReportService(reportRepo, activityRepo)

	importService := appimporter.NewLeadImportService(leadRepo, activityRepo, log)
	importService.SetEventPublisher(eventBus)

	// Invoice PDF rendering
	templateEngine := printing.NewTemplateEngine()
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			ExecPath:    cfg.Printing.ChromePath,
			RenderDelay: cfg.Printing.RenderDelay,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		pdfRenderer = renderer
		log.Info("Invoice PDF rendering enabled")
	}

	// HTTP layer
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(db.DB),
		Auth:     handler.NewAuthHandler(authService),
		Lead:     handler.NewLeadHandler(leadService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, leadService, templateEngine, pdfRenderer, cfg.App.Name),
		Ledger:   handler.NewLedgerHandler(ledgerService, invoiceService),
		Campaign: handler.NewCampaignHandler(campaignService),
		Report:   handler.NewReportHandler(reportService),
		Webhook:  handler.NewWebhookHandler(leadService, cfg.Webhook.Secret, log),
		Import:   handler.NewImportHandler(importService, cfg.Import),
	}
	engine := router.New(cfg, log, jwtService, handlers)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newBlobStorage picks the storage backend from configuration. Local
// disk is the development default; production uses S3.
func newBlobStorage(cfg *config.Config) (appcrm.BlobStorage, error) {
	if cfg.Storage.Provider == "s3" {
		return storage.NewS3BlobStorage(&cfg.Storage)
	}
	return storage.NewLocalBlobStorage(cfg.Storage.LocalPath)
}
