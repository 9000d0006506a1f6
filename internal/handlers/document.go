package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tpaops/claimsgo/internal/middleware"
	"github.com/tpaops/claimsgo/internal/services/docstream"
)

// downloadDocument streams one claim document to the caller. The streamer's
// typed failures map onto distinct status codes so client UIs can tell
// "not yours" from "corrupted" from "not found".
func (r *Router) downloadDocument(w http.ResponseWriter, req *http.Request) {
	actor, ok := middleware.ActorFrom(req.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Caller context required")
		return
	}

	vars := mux.Vars(req)
	claimID, err := strconv.ParseUint(vars["claimID"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid claim ID")
		return
	}
	documentID, err := strconv.ParseUint(vars["documentID"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	doc, err := r.streamer.Fetch(uint(claimID), uint(documentID), actor.IsAdmin(), actor)
	if err != nil {
		var streamErr *docstream.StreamError
		if errors.As(err, &streamErr) {
			respondError(w, streamErr.HTTPStatus(), streamErr.Message)
			return
		}
		log.Printf("❌ Document download failed (claim %d, document %d): %v", claimID, documentID, err)
		respondError(w, http.StatusInternalServerError, "Document download failed")
		return
	}
	defer doc.Reader.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if doc.MimeType != "" {
		w.Header().Set("Content-Type", doc.MimeType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if doc.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}

	if _, err := io.Copy(w, doc.Reader); err != nil {
		log.Printf("⚠️  Document stream interrupted (claim %d, document %d): %v", claimID, documentID, err)
	}
}
