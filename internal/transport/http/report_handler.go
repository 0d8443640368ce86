package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"powercars-survey-service/internal/app"
)

// ReportHandler serves the authenticated reporting endpoints.
type ReportHandler struct {
	reports *app.ReportService
}

func NewReportHandler(reports *app.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary handles GET /api/reports/summary?format=&date_from=&date_to=.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, downloadURL, err := h.reports.Summary(r.Context(), q.Get("date_from"), q.Get("date_to"), q.Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if downloadURL != "" {
		writeJSON(w, http.StatusOK, map[string]string{"download_url": downloadURL})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report_data": report})
}

// Detailed handles GET /api/reports/detailed?section=&area=&format=.
func (h *ReportHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.reports.Detailed(r.Context(), q.Get("section"), q.Get("area")))
}

// Responses handles GET /api/reports/responses?format=&include_personal_data=&area=.
func (h *ReportHandler) Responses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includePersonal := q.Get("include_personal_data") == "true"

	inline, file, err := h.reports.ExportResponses(r.Context(), q.Get("format"), includePersonal, q.Get("area"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if file != nil {
		writeJSON(w, http.StatusOK, file)
		return
	}
	writeJSON(w, http.StatusOK, inline)
}

// Analytics handles GET /api/reports/analytics.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Analytics(r.Context()))
}

// Download handles GET /api/reports/download/{name}.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	data, err := h.reports.Download(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
