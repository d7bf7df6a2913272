package router

import (
	"encoding/json"
	"net/http"

	"github.com/agrocampo/campo-api/internal/auth"
	"github.com/agrocampo/campo-api/internal/config"
	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/http/handler"
	"github.com/agrocampo/campo-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/agrocampo/campo-api/docs" // generated swagger docs
)

type Router struct {
	cfg                   *config.Config
	logger                *zap.Logger
	store                 docstore.Store
	authMiddleware        *auth.Middleware
	rateLimiter           *middleware.RateLimiter
	clientHandler         *handler.ClientHandler
	serviceRequestHandler *handler.ServiceRequestHandler
	dailyReportHandler    *handler.DailyReportHandler
	proposalHandler       *handler.ProposalHandler
	invoiceHandler        *handler.InvoiceHandler
	validateHandler       *handler.ValidateHandler
	triggerHandler        *handler.TriggerHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	store docstore.Store,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	clientHandler *handler.ClientHandler,
	serviceRequestHandler *handler.ServiceRequestHandler,
	dailyReportHandler *handler.DailyReportHandler,
	proposalHandler *handler.ProposalHandler,
	invoiceHandler *handler.InvoiceHandler,
	validateHandler *handler.ValidateHandler,
	triggerHandler *handler.TriggerHandler,
) *Router {
	return &Router{
		cfg:                   cfg,
		logger:                logger,
		store:                 store,
		authMiddleware:        authMiddleware,
		rateLimiter:           rateLimiter,
		clientHandler:         clientHandler,
		serviceRequestHandler: serviceRequestHandler,
		dailyReportHandler:    dailyReportHandler,
		proposalHandler:       proposalHandler,
		invoiceHandler:        invoiceHandler,
		validateHandler:       validateHandler,
		triggerHandler:        triggerHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe against the document store
	r.Get("/health/store", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := rt.store.Ping(r.Context()); err != nil {
			rt.logger.Error("store health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"service": "docstore",
				"error":   err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "docstore",
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Store change webhook, machine-to-machine only
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireAPIKey)
			r.Post("/triggers/document-change", rt.triggerHandler.DocumentChange)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Shape-only validation for forms
			r.Post("/validate/{kind}", rt.validateHandler.Validate)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
			})

			r.Route("/service-requests", func(r chi.Router) {
				r.Get("/", rt.serviceRequestHandler.List)
				r.Post("/", rt.serviceRequestHandler.Create)
				r.Get("/{id}", rt.serviceRequestHandler.GetByID)
				r.Put("/{id}", rt.serviceRequestHandler.Update)
				r.Get("/{id}/daily-reports", rt.dailyReportHandler.ListByService)
			})

			r.Route("/daily-reports", func(r chi.Router) {
				r.Get("/", rt.dailyReportHandler.List)
				r.Post("/", rt.dailyReportHandler.Create)
				r.Get("/{id}", rt.dailyReportHandler.GetByID)
				r.Put("/{id}", rt.dailyReportHandler.Update)
			})

			r.Route("/proposals", func(r chi.Router) {
				r.Get("/", rt.proposalHandler.List)
				r.Post("/", rt.proposalHandler.Create)
				r.Get("/{id}", rt.proposalHandler.GetByID)
				r.Put("/{id}", rt.proposalHandler.Update)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Put("/{id}", rt.invoiceHandler.Update)
			})
		})
	})

	return r
}
