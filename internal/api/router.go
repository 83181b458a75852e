package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stockmarket/internal/api/handlers"
	"github.com/wonny/stockmarket/pkg/logger"
)

// Handlers bundles everything the router dispatches to
type Handlers struct {
	Market  *handlers.MarketHandler
	Session *handlers.SessionHandler
	System  *handlers.SystemHandler
}

// NewRouter creates and configures the HTTP router. limiter may be nil.
// ⭐ SSOT: every route is registered here
func NewRouter(h Handlers, limiter Limiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.System.Health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Market
	api.HandleFunc("/stocks", h.Market.ListStocks).Methods("GET")
	api.HandleFunc("/stocks", h.Market.AddStock).Methods("POST")
	api.HandleFunc("/stocks/{symbol}", h.Market.GetStock).Methods("GET")
	api.HandleFunc("/stocks/{symbol}/history", h.Market.GetHistory).Methods("GET")

	// Viewing sessions
	api.HandleFunc("/sessions", h.Session.Create).Methods("POST")
	api.HandleFunc("/sessions/{id}", h.Session.Delete).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/page", h.Session.Page).Methods("GET")
	api.HandleFunc("/sessions/{id}/next", h.Session.Next).Methods("POST")
	api.HandleFunc("/sessions/{id}/previous", h.Session.Previous).Methods("POST")
	api.HandleFunc("/sessions/{id}/stream", h.Session.Stream).Methods("GET")

	// Operations
	api.HandleFunc("/jobs", h.System.Jobs).Methods("GET")

	if limiter != nil {
		api.Use(rateLimitMiddleware(limiter))
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Websocket upgrades need the original writer to hijack the connection.
			if r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				log.WithFields(map[string]interface{}{
					"method":   r.Method,
					"path":     r.URL.Path,
					"duration": time.Since(start),
				}).Debug("HTTP upgrade closed")
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					respondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
