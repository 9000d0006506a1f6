package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/models"
	"github.com/tpaops/claimsgo/internal/services/ingest"
)

// ingestBatch accepts a TPA claim batch. Ingestion is best-effort per item:
// the response is always 200 with a per-claim breakdown, except for a
// structurally empty payload which fails outright.
func (r *Router) ingestBatch(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Caller context required")
		return
	}

	var payload models.BatchPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	result, err := r.ingest.IngestBatch(&payload, actor)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyBatch) {
			respondError(w, http.StatusBadRequest, "Batch contains no claims")
			return
		}
		log.Printf("❌ Batch ingestion failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Batch ingestion failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
