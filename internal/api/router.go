package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hellogreencow/burch/internal/api/handlers"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Handlers bundles every endpoint group the router mounts.
type Handlers struct {
	Universe  *handlers.UniverseHandler
	Admin     *handlers.AdminHandler
	Scenario  *handlers.ScenarioHandler
	Report    *handlers.ReportHandler
	Discovery *handlers.DiscoveryHandler
	Chat      *handlers.ChatHandler
	Live      *LiveHub
}

// NewRouter creates and configures the HTTP router
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Universe
	v1.HandleFunc("/feed", h.Universe.GetFeed).Methods("GET")
	v1.HandleFunc("/brand/{id}", h.Universe.GetBrand).Methods("GET")
	v1.HandleFunc("/brand/{id}/timeseries", h.Universe.GetTimeseries).Methods("GET")

	// Scenario simulation
	v1.HandleFunc("/simulate", h.Scenario.Simulate).Methods("POST")

	// Reports
	v1.HandleFunc("/report", h.Report.Generate).Methods("POST")
	v1.HandleFunc("/report/top", h.Report.GenerateTop).Methods("POST")

	// Discovery
	v1.HandleFunc("/discover", h.Discovery.Discover).Methods("GET")

	// Chat
	v1.HandleFunc("/chat", h.Chat.Chat).Methods("POST")

	// Admin
	v1.HandleFunc("/admin/reseed", h.Admin.Reseed).Methods("POST")
	v1.HandleFunc("/admin/refresh", h.Admin.Refresh).Methods("POST")
	v1.HandleFunc("/admin/budget", h.Admin.GetBudget).Methods("GET")

	// Live dashboard updates
	if h.Live != nil {
		v1.Handle("/live", h.Live).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "eidolon-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
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

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
