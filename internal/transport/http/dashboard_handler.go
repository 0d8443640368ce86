package http

import (
	"net/http"

	"powercars-survey-service/internal/app"
)

// DashboardHandler serves the authenticated analytics endpoints.
type DashboardHandler struct {
	analytics *app.AnalyticsService
}

func NewDashboardHandler(analytics *app.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analytics: analytics}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.DashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Satisfaction handles GET /api/dashboard/satisfaction.
func (h *DashboardHandler) Satisfaction(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analytics.SatisfactionAnalysis(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Hierarchy handles GET /api/dashboard/hierarchy.
func (h *DashboardHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analytics.HierarchyAnalysis(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Issues handles GET /api/dashboard/issues.
func (h *DashboardHandler) Issues(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.analytics.IssuesAnalysis(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
