package rest

import (
	"context"
	"net/http"
	"time"

	"recall-backend/application/services"
	"recall-backend/interfaces/http/rest/handlers"
	"recall-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// ReadinessChecker reports whether a backing store is reachable.
type ReadinessChecker func(ctx context.Context) error

// Router creates and configures the HTTP router
type Router struct {
	service   *services.MemoryService
	authCfg   middleware.AuthConfig
	readiness ReadinessChecker
	logger    *zap.Logger
}

// NewRouter creates a new router instance. readiness may be nil, in
// which case the readiness probe always reports ready.
func NewRouter(
	service *services.MemoryService,
	authCfg middleware.AuthConfig,
	readiness ReadinessChecker,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:   service,
		authCfg:   authCfg,
		readiness: readiness,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	memoryHandler := handlers.NewMemoryHandler(rt.service, rt.logger)

	// Memory endpoints keep the trailing-slash paths the API has always
	// exposed, so existing clients need no changes.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.authCfg, rt.logger))

		r.Route("/memories", func(r chi.Router) {
			r.Post("/", memoryHandler.CreateMemories)
			r.Get("/", memoryHandler.GetAllMemories)
			r.Delete("/", memoryHandler.DeleteAllMemories)
			r.Get("/{memoryID}", memoryHandler.GetMemory)
			r.Put("/{memoryID}", memoryHandler.UpdateMemory)
			r.Delete("/{memoryID}", memoryHandler.DeleteMemory)
			r.Get("/{memoryID}/history/", memoryHandler.MemoryHistory)
		})

		r.Post("/search", memoryHandler.SearchMemories)
		r.Post("/reset/", memoryHandler.ResetMemories)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports readiness, probing the vector store when a
// checker is configured.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if rt.readiness != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.readiness(ctx); err != nil {
			rt.logger.Warn("readiness probe failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
