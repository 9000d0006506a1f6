package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/services/audit"
)

// listBatches returns a filtered, paginated page of ingest batches with the
// cross-batch summary
func (r *Router) listBatches(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok || !actor.IsAdmin() {
		respondError(w, http.StatusForbidden, "Administrative access required")
		return
	}

	q := req.URL.Query()
	query := audit.BatchQuery{
		From:        q.Get("from"),
		To:          q.Get("to"),
		Reference:   q.Get("reference"),
		RequestIP:   q.Get("ip"),
		HasFailures: q.Get("has_failures"),
		CompanyID:   q.Get("company_id"),
		Page:        atoiDefault(q.Get("page"), 1),
		PerPage:     atoiDefault(q.Get("per_page"), 0),
	}

	page, err := r.audit.ListBatches(query, actor.CompanyScope)
	if err != nil {
		log.Printf("❌ Batch listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list batches")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// batchDetail returns one full batch including the complete items list
func (r *Router) batchDetail(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok || !actor.IsAdmin() {
		respondError(w, http.StatusForbidden, "Administrative access required")
		return
	}

	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid batch ID")
		return
	}

	view, err := r.audit.BatchDetail(uint(id), actor.CompanyScope)
	if err != nil {
		if errors.Is(err, audit.ErrNotVisible) {
			respondError(w, http.StatusNotFound, "Batch not found")
			return
		}
		log.Printf("❌ Batch detail failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load batch")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// batchSummaryPDF renders the printable batch summary sheet
func (r *Router) batchSummaryPDF(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok || !actor.IsAdmin() {
		respondError(w, http.StatusForbidden, "Administrative access required")
		return
	}

	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid batch ID")
		return
	}

	pdfBytes, err := r.audit.BatchSummaryPDF(uint(id), actor.CompanyScope)
	if err != nil {
		if errors.Is(err, audit.ErrNotVisible) {
			respondError(w, http.StatusNotFound, "Batch not found")
			return
		}
		log.Printf("❌ Batch PDF failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to render batch summary")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="batch-summary.pdf"`)
	w.Write(pdfBytes)
}

// listDownloads returns the denormalized document-download audit trail
func (r *Router) listDownloads(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok || !actor.IsAdmin() {
		respondError(w, http.StatusForbidden, "Administrative access required")
		return
	}

	q := req.URL.Query()
	query := audit.DownloadQuery{
		From:           q.Get("from"),
		To:             q.Get("to"),
		ClaimReference: q.Get("reference"),
		IP:             q.Get("ip"),
		Channel:        q.Get("channel"),
		CompanyID:      q.Get("company_id"),
		Page:           atoiDefault(q.Get("page"), 1),
		PerPage:        atoiDefault(q.Get("per_page"), 0),
	}

	page, err := r.audit.ListDownloads(query, actor.CompanyScope)
	if err != nil {
		log.Printf("❌ Download listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list downloads")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func atoiDefault(value string, fallback int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}
