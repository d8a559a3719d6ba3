package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corstar/site-intake/internal/admin"
	"github.com/corstar/site-intake/internal/cta"
	httpmiddleware "github.com/corstar/site-intake/internal/http/middleware"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/intake"
	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// LimiterFor returns the limiter guarding one endpoint. Nil disables limiting for it.
type LimiterFor func(endpoint inquiry.Endpoint) ratelimit.Limiter

// Config holds router configuration
type Config struct {
	Logger     *logging.Logger
	Intake     intake.Deps
	LimiterFor LimiterFor

	// Admin read view (optional)
	Admin               *admin.Handler
	AdminAuthSecret     string
	AdminAllowedOrigins []string

	// CTAs is served read-only at /functions/v1/cta when set.
	CTAs cta.Registry

	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck
}

// FunctionsPrefix is where the intake and admin functions are served.
const FunctionsPrefix = "/functions/v1"

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Intake.Logger == nil {
		cfg.Intake.Logger = cfg.Logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	r.Get("/health", healthHandler(cfg.HealthChecks))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route(FunctionsPrefix, func(fn chi.Router) {
		for _, profile := range inquiry.Profiles {
			var limiter ratelimit.Limiter
			if cfg.LimiterFor != nil {
				limiter = cfg.LimiterFor(profile.Endpoint)
			}
			// Handle, not Post: the endpoint answers OPTIONS and 405s itself.
			fn.Handle("/"+string(profile.Endpoint), intake.Endpoint(profile, limiter, cfg.Intake))
		}

		if cfg.CTAs != nil {
			fn.Method(http.MethodGet, "/cta", cfg.CTAs.Handler())
		}

		if cfg.Admin != nil {
			fn.Route("/admin-data", func(ad chi.Router) {
				ad.Use(middleware.Recoverer)
				ad.Use(httpmiddleware.CORS(cfg.AdminAllowedOrigins))
				ad.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
				ad.Get("/", cfg.Admin.List)
				ad.Get("/export", cfg.Admin.Export)
				ad.Post("/archive", cfg.Admin.Archive)
			})
		}
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp[name] = err.Error()
				resp["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp[name] = "ok"
		}
		httpmiddleware.WriteJSON(w, status, resp)
	}
}
