package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AthenaOS24/AthenaOS/internal/chat"
	httpmiddleware "github.com/AthenaOS24/AthenaOS/internal/http/middleware"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Provider is the responder backend name reported by the health check.
	Provider string
	// ActiveSessions reports the current session count, nil when the
	// backing store cannot count cheaply.
	ActiveSessions func() int
}

// New creates a new Chi router with all routes configured.
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

	r.Get("/health", healthHandler(cfg))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/chat", cfg.ChatHandler.Chat)
		v1.Get("/sessions/{id}/history", cfg.ChatHandler.History)
		v1.Delete("/sessions/{id}", cfg.ChatHandler.DeleteSession)
	})

	return r
}

func healthHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{
			"status":    "healthy",
			"provider":  cfg.Provider,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if cfg.ActiveSessions != nil {
			body["active_sessions"] = cfg.ActiveSessions()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}
