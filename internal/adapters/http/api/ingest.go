package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/hackwreck/internal/domain/model"
)

// handleInsert handles POST /api/insert. A duplicate is a 200 with success=false.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req model.InsertRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Ingest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSubmitBatch handles POST /api/insert/batch.
func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req model.BatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.deps.SubmitBatch(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// handleBatchStatus handles GET /api/insert/batch/{id}.
func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.deps.BatchStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
