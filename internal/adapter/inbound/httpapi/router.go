package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jonny/edudiag/internal/adapter/inbound/httpapi/middleware"
	"github.com/jonny/edudiag/pkg/apierror"
	"github.com/jonny/edudiag/pkg/health"
)

// RouterConfig holds the API surface settings.
type RouterConfig struct {
	AllowedOrigins    []string
	RateLimitEnabled  bool
	RequestsPerMinute int
	MaxBodyBytes      int64
	TrustProxy        bool
}

// NewRouter builds the API router. Route layout:
//
//	GET  /                 - index page
//	GET  /health           - readiness of history and probe
//	GET  /api/symptoms     - symptom vocabulary
//	POST /api/diagnose     - best diagnosis (?all=true for every diagnosis)
//	GET  /api/diagnosis    - diagnosis history
//
// observer may be nil.
func NewRouter(h *Handler, checker *health.Checker, cfg RouterConfig, logger *slog.Logger, observer middleware.HTTPObserver) http.Handler {
	r := chi.NewRouter()

	// Outermost first: RequestID -> ClientIP -> BodyReader -> Logging -> RateLimit -> SecurityHeaders
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP(cfg.TrustProxy))
	r.Use(middleware.BodyReader(cfg.MaxBodyBytes))
	r.Use(middleware.Logging(logger, observer))
	if cfg.RateLimitEnabled {
		r.Use(middleware.NewRateLimiter(cfg.RequestsPerMinute).Middleware)
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-Total-Count"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierror.Write(w, apierror.NotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierror.Write(w, apierror.New(http.StatusMethodNotAllowed, "method not allowed"))
	})

	r.Get("/", h.Index)
	r.Get("/health", checker.ReadinessHandler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/symptoms", h.Symptoms)
		r.Post("/diagnose", h.Diagnose)
		r.Get("/diagnosis", h.History)
	})
	return r
}

// NewMetricsRouter serves liveness, readiness and Prometheus metrics.
func NewMetricsRouter(checker *health.Checker, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", checker.LivenessHandler())
	r.Get("/readyz", checker.ReadinessHandler())
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}
