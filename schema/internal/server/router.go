package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/common/middleware"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/handlers"
)

// Options selects the optional parts of the router.
type Options struct {
	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath    string
	AllowedOrigins []string
	Logger         *logging.Logger
}

// NewRouter constructs a ServeMux with the schema API routes registered.
func NewRouter(h *handlers.Handler, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.HealthCheck)
	if opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, promhttp.Handler())
	}

	mux.HandleFunc("GET /api/v1/versions", h.ListVersions)
	mux.HandleFunc("DELETE /api/v1/schemas/{version}", h.ClearSchema)
	mux.HandleFunc("GET /api/v1/schemas/{version}/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/v1/schemas/{version}/classes", h.ListClasses)
	mux.HandleFunc("GET /api/v1/schemas/{version}/classes/{class}", h.GetClass)
	mux.HandleFunc("POST /api/v1/schemas/{version}/projections", h.CreateProjection)
	mux.HandleFunc("POST /api/v1/schemas/{version}/validations", h.CreateValidation)
	mux.HandleFunc("POST /api/v1/schemas/{version}/samples", h.CreateSample)

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var handler http.Handler = mux
	handler = middleware.AccessLog(logger.Logger)(handler)
	if len(opts.AllowedOrigins) > 0 {
		handler = middleware.CORS(middleware.DefaultCORSConfig(opts.AllowedOrigins))(handler)
	}
	return middleware.RequestID(handler)
}
