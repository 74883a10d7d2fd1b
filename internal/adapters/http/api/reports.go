package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ReportsHandler serves stored reports.
type ReportsHandler struct {
	deps Dependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Dependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleGetReport handles GET /reports/{respondentID}.
func (h *ReportsHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := respondentParam(w, r)
	if !ok {
		return
	}
	report, err := h.deps.Report(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetReportText handles GET /reports/{respondentID}/text, the plain
// rendering handed to report writers.
func (h *ReportsHandler) HandleGetReportText(w http.ResponseWriter, r *http.Request) {
	id, ok := respondentParam(w, r)
	if !ok {
		return
	}
	text, err := h.deps.ReportText(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func respondentParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "respondentID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrMissingParam)
		return "", false
	}
	return id, true
}
