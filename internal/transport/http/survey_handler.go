package http

import (
	"encoding/json"
	"net"
	"net/http"

	"powercars-survey-service/internal/app"
)

// SurveyHandler serves the public questionnaire and session endpoints.
type SurveyHandler struct {
	survey *app.SurveyService
}

func NewSurveyHandler(survey *app.SurveyService) *SurveyHandler {
	return &SurveyHandler{survey: survey}
}

// Template handles GET /api/survey/template.
func (h *SurveyHandler) Template(w http.ResponseWriter, r *http.Request) {
	view, err := h.survey.ActiveTemplate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type startRequest struct {
	EmployeeName   string `json:"employee_name"`
	EmployeeArea   string `json:"employee_area"`
	WorkExperience string `json:"work_experience"`
	IsAnonymous    bool   `json:"is_anonymous"`
}

// Start handles POST /api/survey/start.
func (h *SurveyHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	result, err := h.survey.StartSession(r.Context(), app.StartRequest{
		EmployeeName:   req.EmployeeName,
		EmployeeArea:   req.EmployeeArea,
		WorkExperience: req.WorkExperience,
		IsAnonymous:    req.IsAnonymous,
		IPAddress:      clientIP(r),
		UserAgent:      r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type answerRequest struct {
	ResponseID int64 `json:"response_id"`
	QuestionID int64 `json:"question_id"`
	Answer     any   `json:"answer"`
}

// Answer handles POST /api/survey/answer.
func (h *SurveyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if err := h.survey.SaveAnswer(r.Context(), req.ResponseID, req.QuestionID, req.Answer); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Respuesta guardada"})
}

type completeRequest struct {
	ResponseID int64 `json:"response_id"`
}

// Complete handles POST /api/survey/complete.
func (h *SurveyHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "cuerpo de solicitud inválido")
		return
	}

	if err := h.survey.CompleteSession(r.Context(), req.ResponseID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Encuesta completada exitosamente"})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
