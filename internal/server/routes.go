package server

import (
	"net/http"

	"github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer). db may be nil.
func NewHandler(jobSvc *faxjob.Service, db HealthChecker) http.Handler {
	return newMux(jobSvc, db)
}

func newMux(jobSvc *faxjob.Service, db HealthChecker) http.Handler {
	h := &handler{
		jobSvc: jobSvc,
		db:     db,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("POST /api/v1/fax-jobs", h.createJob)
	mux.HandleFunc("GET /api/v1/fax-jobs", h.searchJobs)
	mux.HandleFunc("GET /api/v1/fax-jobs/stats", h.stats)
	mux.HandleFunc("POST /api/v1/fax-jobs/claim", h.claimNext)
	mux.HandleFunc("POST /api/v1/fax-jobs/retry-errors", h.retryErrored)
	mux.HandleFunc("DELETE /api/v1/fax-jobs/completed", h.clearCompleted)
	mux.HandleFunc("GET /api/v1/fax-jobs/{id}", h.getJob)
	mux.HandleFunc("POST /api/v1/fax-jobs/{id}/status", h.updateStatus)
	mux.HandleFunc("POST /api/v1/fax-jobs/{id}/retry", h.retryJob)
	mux.HandleFunc("PUT /api/v1/fax-jobs/{id}/converted-pdf", h.setConvertedPDF)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
