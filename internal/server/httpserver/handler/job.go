package handler

import (
	"net/http"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

// ListJobs handles GET /jobs. An email query parameter restricts the list
// to the jobs that address posted.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out := make([]domain.Document, len(jobs))
	for i, job := range jobs {
		out[i] = job.Document
	}
	writeJSON(w, r, http.StatusOK, out)
}

// CreateJob handles POST /jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	id, err := h.jobs.Create(r.Context(), doc)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, InsertResult{Acknowledged: true, InsertedID: id})
}

// GetJob handles GET /jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, job.Document)
}
