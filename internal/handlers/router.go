package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/middleware"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
)

// RouterConfig collects everything NewRouter mounts.
type RouterConfig struct {
	Nodes      *NodeHandler
	Edges      *EdgeHandler
	Flashcards *FlashcardHandler
	AI         *AIHandler
	Health     *HealthHandler

	Auth           middleware.AuthConfig
	Metrics        *observability.Collector
	Logger         *zap.Logger
	AllowedOrigins []string
	CORSMaxAge     int
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware - applied to all routes
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.InFlight(cfg.Metrics.InFlightGauge()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, middleware.UserIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.CORSMaxAge,
	}))
	r.Use(middleware.Timeout(timeout, cfg.Logger))

	// Public routes
	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api-routes"), cfg.Logger))
		r.Use(middleware.Authenticate(cfg.Auth))

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", cfg.Nodes.ListNodes)
			r.Post("/", cfg.Nodes.CreateNode)
			r.Get("/hierarchy", cfg.Nodes.Hierarchy)
			r.Post("/import", cfg.Nodes.Import)
			r.Get("/export", cfg.Nodes.Export)
			r.Post("/tags/suggest", cfg.Nodes.SuggestTags)
			r.Get("/{nodeId}", cfg.Nodes.GetNode)
			r.Put("/{nodeId}", cfg.Nodes.UpdateNode)
			r.Delete("/{nodeId}", cfg.Nodes.DeleteNode)
			r.Get("/{nodeId}/children", cfg.Nodes.Children)
			r.Post("/{nodeId}/executions", cfg.Nodes.LogExecution)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", cfg.Edges.ListEdges)
			r.Post("/", cfg.Edges.CreateEdge)
			r.Delete("/{edgeId}", cfg.Edges.DeleteEdge)
		})

		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/", cfg.Flashcards.ListCards)
			r.Get("/due", cfg.Flashcards.DueCards)
			r.Get("/stats", cfg.Flashcards.Stats)
			r.Post("/generate", cfg.Flashcards.Generate)
			r.Put("/{cardId}/progress", cfg.Flashcards.UpdateProgress)
			r.Delete("/{cardId}", cfg.Flashcards.DeleteCard)
		})

		r.Post("/ai/connect", cfg.AI.AutoConnect)
	})

	return r
}
