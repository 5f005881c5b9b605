package routes

import (
	"net/http"

	"github.com/zatekoja/specialistfinder/backend/internal/api/handlers"
	"github.com/zatekoja/specialistfinder/backend/internal/api/middleware"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	hospitalHandler   *handlers.HospitalHandler
	extractionHandler *handlers.ExtractionHandler
	summaryHandler    *handlers.SummaryHandler
	staticHandler     *handlers.StaticHandler
	sseHandler        *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. cacheMiddleware and sseHandler may be nil.
func NewRouter(
	hospitalHandler *handlers.HospitalHandler,
	extractionHandler *handlers.ExtractionHandler,
	summaryHandler *handlers.SummaryHandler,
	staticHandler *handlers.StaticHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		hospitalHandler:   hospitalHandler,
		extractionHandler: extractionHandler,
		summaryHandler:    summaryHandler,
		staticHandler:     staticHandler,
		sseHandler:        sseHandler,
		cacheMiddleware:   cacheMiddleware,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /{$}", handlers.Home)
	r.mux.HandleFunc("GET /health", handlers.Health)

	// Hospital search
	r.mux.HandleFunc("POST /map", r.hospitalHandler.FindNearby)
	r.mux.HandleFunc("POST /city_hospitals", r.hospitalHandler.FindInCity)
	r.mux.HandleFunc("POST /classify", r.hospitalHandler.Classify)
	r.mux.HandleFunc("GET /api/searches", r.hospitalHandler.ListSearches)
	r.mux.HandleFunc("GET /api/searches/last", r.hospitalHandler.LastSearch)
	r.mux.HandleFunc("GET /api/hospitals/indexed", r.hospitalHandler.SearchIndexed)

	// Disease extraction
	r.mux.HandleFunc("POST /{$}", r.extractionHandler.Extract)
	r.mux.HandleFunc("POST /extract", r.extractionHandler.Extract)

	r.mux.HandleFunc("POST /api/generate-summary", r.summaryHandler.GenerateSummary)

	r.mux.HandleFunc("GET /static/{path...}", r.staticHandler.Serve)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/searches", r.sseHandler.StreamSearches)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
