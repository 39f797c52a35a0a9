package handler

import (
	"net/http"

	"github.com/yndnr/jobboard-go/internal/core/domain"
)

func applicationDocs(apps []*domain.Application) []domain.Document {
	out := make([]domain.Document, len(apps))
	for i, app := range apps {
		out[i] = app.Document
	}
	return out
}

// ListMyApplications handles GET /job-applications?email=. It must sit
// behind the session gate; the caller may only list its own applications.
func (h *Handler) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.ListForPrincipal(r.Context(), principal(r.Context()), r.URL.Query().Get("email"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, applicationDocs(apps))
}

// ListJobApplications handles GET /job-applications/jobs/{job_id}.
func (h *Handler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.ListForJob(r.Context(), r.PathValue("job_id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, applicationDocs(apps))
}

// SubmitApplication handles POST /job-applications.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	id, err := h.apps.Submit(r.Context(), doc)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, InsertResult{Acknowledged: true, InsertedID: id})
}

// UpdateApplicationStatus handles PATCH /job-applications/{id}. Whether
// it is gated is decided at route registration; the ownership check runs
// in the service when gating is on.
func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.apps.UpdateStatus(r.Context(), principal(r.Context()), r.PathValue("id"), req.Status); err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1})
}
