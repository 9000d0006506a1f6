package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tpaops/claimsgo/internal/config"
	"github.com/tpaops/claimsgo/internal/database"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/services/audit"
	"github.com/tpaops/claimsgo/internal/services/docstream"
	"github.com/tpaops/claimsgo/internal/services/ingest"
)

// Router wraps the mux router and the pipeline services
type Router struct {
	*mux.Router
	db       *database.DB
	ingest   *ingest.Service
	streamer *docstream.Streamer
	audit    *audit.Service
}

// NewRouter creates the HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, ingestSvc *ingest.Service, streamer *docstream.Streamer, auditSvc *audit.Service) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		ingest:   ingestSvc,
		streamer: streamer,
		audit:    auditSvc,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// API routes (authenticated)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	api.HandleFunc("/claims/ingest", r.ingestBatch).Methods("POST")
	api.HandleFunc("/claims/{claimID}/documents/{documentID}/download", r.downloadDocument).Methods("GET")

	api.HandleFunc("/audit/ingest-batches", r.listBatches).Methods("GET")
	api.HandleFunc("/audit/ingest-batches/{id}", r.batchDetail).Methods("GET")
	api.HandleFunc("/audit/ingest-batches/{id}/summary.pdf", r.batchSummaryPDF).Methods("GET")
	api.HandleFunc("/audit/document-downloads", r.listDownloads).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
