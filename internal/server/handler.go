package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
	"github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

// HealthChecker is implemented by the database handles.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

type handler struct {
	jobSvc *faxjob.Service
	db     HealthChecker
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.HealthCheck(r.Context(), 2*time.Second); err != nil {
			slog.Error("health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) createJob(w http.ResponseWriter, r *http.Request) {
	var req faxjob.CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	j, err := h.jobSvc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, j.View())
}

func (h *handler) searchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := make(map[string]string, len(q))
	for k := range q {
		params[k] = q.Get(k)
	}

	filter, err := faxjob.ParseFilter(params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be json, csv or xlsx")
		return
	}

	jobs, err := h.jobSvc.Search(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch format {
	case "csv":
		writeCSV(w, jobs)
	case "xlsx":
		writeXLSX(w, jobs)
	default:
		writeJSON(w, http.StatusOK, faxjob.Views(jobs))
	}
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.loadJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, j.View())
}

func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req faxjob.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}

	j, ok := h.loadJob(w, r)
	if !ok {
		return
	}
	if err := h.jobSvc.Mark(r.Context(), j, faxjob.Status(*req.Status), req.ErrorMessage); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j.View())
}

func (h *handler) setConvertedPDF(w http.ResponseWriter, r *http.Request) {
	var req faxjob.SetConvertedPDFRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	j, ok := h.loadJob(w, r)
	if !ok {
		return
	}
	if err := h.jobSvc.SetConvertedPDF(r.Context(), j, req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j.View())
}

func (h *handler) retryJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobSvc.Retry(r.Context(), faxjob.GetJobRequest{ID: r.PathValue("id")})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j.View())
}

func (h *handler) claimNext(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobSvc.ClaimNext(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if j == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, j.View())
}

func (h *handler) retryErrored(w http.ResponseWriter, r *http.Request) {
	n, err := h.jobSvc.RetryErrored(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"requeued": n})
}

func (h *handler) clearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := h.jobSvc.ClearCompleted(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.jobSvc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handler) loadJob(w http.ResponseWriter, r *http.Request) (*faxjob.Job, bool) {
	j, err := h.jobSvc.Get(r.Context(), faxjob.GetJobRequest{ID: r.PathValue("id")})
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return j, true
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if ae, ok := apperror.As(err); ok {
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
