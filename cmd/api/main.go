package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrocampo/campo-api/docs"
	"github.com/agrocampo/campo-api/internal/auth"
	"github.com/agrocampo/campo-api/internal/config"
	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/http/handler"
	"github.com/agrocampo/campo-api/internal/http/middleware"
	"github.com/agrocampo/campo-api/internal/http/router"
	"github.com/agrocampo/campo-api/internal/jobs"
	"github.com/agrocampo/campo-api/internal/logger"
	"github.com/agrocampo/campo-api/internal/repository"
	"github.com/agrocampo/campo-api/internal/service"
	"github.com/agrocampo/campo-api/internal/trigger"
	"github.com/agrocampo/campo-api/internal/validation"
	"go.uber.org/zap"
)

// @title Campo API
// @version 1.0
// @description Validation and consistency API for agricultural service management: clients, service requests, field reports, proposals and invoices

// @contact.name API Support
// @contact.email soporte@agrocampo.mx

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system operations such as the change webhook

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)

	// Document store
	store, err := docstore.NewDynamoStore(ctx, &cfg.Store, log)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Warn("document store not reachable at startup", zap.Error(err))
	}

	// Shared rule engine: the form path and the write trigger run the same rules
	rules := validation.NewRules()
	checker := validation.NewChecker(store, log)

	// Repositories
	clientRepo := repository.NewClientRepository(store)
	requestRepo := repository.NewServiceRequestRepository(store)
	reportRepo := repository.NewDailyReportRepository(store)
	proposalRepo := repository.NewProposalRepository(store)
	invoiceRepo := repository.NewInvoiceRepository(store)

	// Services
	clientService := service.NewClientService(rules, checker, clientRepo, log)
	requestService := service.NewServiceRequestService(rules, checker, requestRepo, log)
	reportService := service.NewDailyReportService(rules, checker, reportRepo, log)
	proposalService := service.NewProposalService(rules, checker, proposalRepo, log)
	invoiceService := service.NewInvoiceService(rules, checker, invoiceRepo, log)

	// Write-trigger revalidator
	revalidator := trigger.NewRevalidator(store, rules, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	clientHandler := handler.NewClientHandler(clientService, log)
	requestHandler := handler.NewServiceRequestHandler(requestService, log)
	reportHandler := handler.NewDailyReportHandler(reportService, log)
	proposalHandler := handler.NewProposalHandler(proposalService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	validateHandler := handler.NewValidateHandler(rules, log)
	triggerHandler := handler.NewTriggerHandler(revalidator, log)

	rt := router.NewRouter(
		cfg,
		log,
		store,
		authMiddleware,
		rateLimiter,
		clientHandler,
		requestHandler,
		reportHandler,
		proposalHandler,
		invoiceHandler,
		validateHandler,
		triggerHandler,
	)

	// Scheduled revalidation sweep
	scheduler := jobs.NewScheduler(log)
	revalidationJob := jobs.NewRevalidationJob(revalidator, &cfg.Revalidation, log)
	if err := revalidationJob.Register(scheduler); err != nil {
		log.Error("Failed to register revalidation job", zap.Error(err))
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
