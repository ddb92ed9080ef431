package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"loan-origination/internal/api/handler"
	mw "loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Services bundles what the HTTP layer calls into. Redis may be nil.
type Services struct {
	Loans     loan.Service
	Customers customer.CustomerService
	Redis     redis.UniversalClient
}

func SetupRouter(ctx context.Context, svc Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(ctx, router, cfg, svc.Redis, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupCustomerRoutes(router, cfg, svc.Customers, logger)
	setupLoanRoutes(router, cfg, svc, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(ctx context.Context, router *chi.Mux, cfg *config.Config, rdb redis.UniversalClient, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiter(ctx, cfg.Server.RateLimit, rdb, logger))
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc.Loans, logger)

	router.Route("/v1/loan-requests", func(r chi.Router) {
		// Simulations are open to anonymous visitors.
		r.Post("/loan-web-simulate", h.SimulateWeb)
		r.Post("/loan-simulate", h.SimulatePublic)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))

			r.With(mw.Idempotency(svc.Redis, cfg.Loan.IdempotencyTTL, logger)).Post("/", h.CreateLoanRequest)
			r.Post("/loan-preview", h.PreviewLoan)

			r.Get("/in-progress", h.ListInProgress)
			r.Get("/history", h.History)

			r.Get("/marketing/all", h.ListForMarketing)
			r.Put("/review/{loanRequestID}", h.ReviewByMarketing)

			r.Get("/branch-manager/all", h.ListForBranchManager)
			r.Put("/branch-manager/review/{loanRequestID}", h.ReviewByBranchManager)

			r.Get("/back-office/all", h.ListForBackOffice)
			r.Put("/back-office/disburse/{loanRequestID}", h.Disburse)

			r.Get("/{loanRequestID}", h.GetLoanRequest)
			r.Put("/{loanRequestID}/status", h.Transition)
		})
	})
}

func setupCustomerRoutes(router *chi.Mux, cfg *config.Config, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	router.Route("/v1/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/me", h.GetProfile)
	})
}
