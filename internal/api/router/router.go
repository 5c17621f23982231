package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/natashamaes/venue-concierge/internal/http/handlers"
	httpmiddleware "github.com/natashamaes/venue-concierge/internal/http/middleware"
	"github.com/natashamaes/venue-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ConciergeHandler   *handlers.ConciergeHandler
	ReportHandler      *handlers.ReportHandler
	DebugHandler       *handlers.DebugHandler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Requests per second per caller IP; zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitRPS > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	// Public endpoints (voice platform webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("Natasha Mae's Concierge: Online"))
		})
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		if cfg.ConciergeHandler != nil {
			public.Post("/tools", cfg.ConciergeHandler.HandleToolCall)
			public.Post("/tools/concierge", cfg.ConciergeHandler.HandleToolCall)
			// The voice platform can point the SMS tool at its own route.
			public.Post("/send-sms", cfg.ConciergeHandler.HandleToolCall)
		}
		if cfg.ReportHandler != nil {
			public.Post("/inbound", cfg.ReportHandler.HandleInbound)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.DebugHandler != nil {
		r.Route("/debug", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/config", cfg.DebugHandler.HandleConfig)
		})
	}

	return r
}
