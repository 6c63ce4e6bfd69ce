package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ahmethakanbesel/fax-api/internal/export"
	"github.com/ahmethakanbesel/fax-api/internal/faxjob"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

func writeCSV(w http.ResponseWriter, jobs []faxjob.Job) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=fax-jobs.csv")
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, jobs); err != nil {
		slog.Error("write csv", "error", err)
	}
}

func writeXLSX(w http.ResponseWriter, jobs []faxjob.Job) {
	body, err := export.XLSX(jobs)
	if err != nil {
		slog.Error("build xlsx", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=fax-jobs.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
