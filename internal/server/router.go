// internal/server/router.go
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gift-finder-backend/internal/common/config"
	"gift-finder-backend/internal/common/logger"
)

// NewRouter assembles the HTTP routing table with the full middleware
// stack.
func NewRouter(cfg config.ServerConfig, h *Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	r.Get("/", h.Home)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/search", h.Search)
		r.Get("/categories", h.Categories)
		r.Get("/filters", h.Filters)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func allowedOrigins(cfg config.ServerConfig) []string {
	if len(cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}

// NewHTTPServer wraps the router in a configured http.Server.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
}
