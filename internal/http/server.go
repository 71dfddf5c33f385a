package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

const (
	defaultDashboardCacheTTL  = 5 * time.Minute
	defaultDashboardCacheSize = 500
	cacheCleanupInterval      = 10 * time.Minute
	readyTimeout              = 5 * time.Second
)

// Services groups the ledger services the API exposes.
type Services struct {
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Budgets      *services.BudgetService
	Recurring    *services.RecurringService
	Analytics    *services.AnalyticsService
}

// SweepTrigger asks the recurring worker to run a sweep now.
type SweepTrigger interface {
	PublishSweepTrigger(ctx context.Context, requestedBy string) error
}

type Config struct {
	Addr               string
	Location           *time.Location
	RateLimitPerMinute int
	DashboardCacheTTL  time.Duration
	DashboardCacheSize int
}

type Deps struct {
	Store    store.Store
	Services Services
	Auth     *auth.Authenticator
	// Sweeps may be nil; the sweep endpoint then answers 503.
	Sweeps SweepTrigger
	Logger *log.Logger
	Now    func() time.Time
}

type Server struct {
	http.Server
	cfg    Config
	deps   Deps
	logger *log.Logger
	now    func() time.Time
	start  time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	// dashboard summaries keyed by "dashboard:<user>:<scope>"
	dashboardCache cache.Cache[core.DashboardSummary]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires middleware and routes, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DashboardCacheTTL <= 0 {
		cfg.DashboardCacheTTL = defaultDashboardCacheTTL
	}
	if cfg.DashboardCacheSize <= 0 {
		cfg.DashboardCacheSize = defaultDashboardCacheSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	} else {
		logger = logger.WithComponent(log.ComponentHTTP)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	dashboard := cache.NewLRUCache[core.DashboardSummary](cfg.DashboardCacheSize, cfg.DashboardCacheTTL)
	manager := cache.NewManager(logger)
	manager.Register(dashboard)
	manager.StartCleanup(cacheCleanupInterval)

	detector := security.NewDetector(logger)
	s := &Server{
		cfg:              cfg,
		deps:             deps,
		logger:           logger,
		now:              now,
		start:            now(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		dashboardCache:   dashboard,
		cacheManager:     manager,
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.securityDetector.Middleware)
	r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, "not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.deps.Auth.Middleware(func(w http.ResponseWriter, r *http.Request, err error) {
			writeError(w, r, err)
		}))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.api(s.handleListAccounts))
			r.Post("/", s.api(s.handleCreateAccount))
			r.Get("/{id}", s.api(s.handleGetAccount))
			r.Patch("/{id}", s.api(s.handleUpdateAccount))
			r.Post("/{id}/archive", s.api(s.handleArchiveAccount))
			r.Post("/{id}/reconcile", s.api(s.handleReconcileAccount))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.api(s.handleListCategories))
			r.Post("/", s.api(s.handleCreateCategory))
			r.Post("/seed", s.api(s.handleSeedCategories))
			r.Get("/{id}", s.api(s.handleGetCategory))
			r.Patch("/{id}", s.api(s.handleUpdateCategory))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.api(s.handleListTransactions))
			r.Post("/", s.api(s.handleCreateTransaction))
			r.Get("/{id}", s.api(s.handleGetTransaction))
			r.Patch("/{id}", s.api(s.handleUpdateTransaction))
			r.Delete("/{id}", s.api(s.handleDeleteTransaction))
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.api(s.handleListBudgets))
			r.Put("/", s.api(s.handleUpsertBudget))
			r.Get("/status", s.api(s.handleBudgetStatus))
			r.Post("/copy", s.api(s.handleCopyBudgets))
			r.Delete("/{id}", s.api(s.handleDeleteBudget))
		})

		r.Route("/recurring", func(r chi.Router) {
			r.Get("/", s.api(s.handleListTemplates))
			r.Post("/", s.api(s.handleCreateTemplate))
			r.Post("/sweep", s.api(s.handleTriggerSweep))
			r.Get("/{id}", s.api(s.handleGetTemplate))
			r.Patch("/{id}", s.api(s.handleUpdateTemplate))
			r.Post("/{id}/toggle", s.api(s.handleToggleTemplate))
			r.Delete("/{id}", s.api(s.handleDeleteTemplate))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/summary", s.api(s.handleDashboardSummary))
			r.Get("/spending", s.api(s.handleSpendingByCategory))
			r.Get("/cash-flow", s.api(s.handleCashFlow))
			r.Get("/balances", s.api(s.handleAccountBalances))
			r.Get("/recent", s.api(s.handleRecentTransactions))
		})
	})
	return r
}

// apiHandler serves an authenticated request; a returned error is mapped
// to a JSON error response.
type apiHandler func(w http.ResponseWriter, r *http.Request, caller core.UserID) error

func (s *Server) api(h apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := auth.UserFrom(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := h(w, r, caller); err != nil {
			writeError(w, r, err)
		}
	}
}

func dashboardKeyPrefix(user core.UserID) string {
	return "dashboard:" + string(user) + ":"
}

// invalidateDashboard drops every cached summary of user after a ledger change.
func (s *Server) invalidateDashboard(ctx context.Context, user core.UserID) {
	if n := s.dashboardCache.DeletePrefix(dashboardKeyPrefix(user)); n > 0 {
		s.logger.DebugContext(ctx, "Dashboard cache invalidated", log.FieldUser, string(user), "entries", n)
	}
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
