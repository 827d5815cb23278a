package v1

import (
	"net/http"

	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/worker"
)

// enqueueOverdueScan starts a scan now instead of waiting for the schedule.
func (h *Handler) enqueueOverdueScan(w http.ResponseWriter, r *http.Request) {
	job, err := worker.EnqueueOverdueScan(r.Context(), h.store, h.pool)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.Accepted(w, r, job)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id := request.RouteIntParam(r, "id")
	job, err := h.store.GetJob(r.Context(), &model.FindJob{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if job == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, job)
}
