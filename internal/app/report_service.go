package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"powercars-survey-service/internal/domain"
)

// ExportStore keeps rendered export artifacts retrievable via download
// references for a limited time.
type ExportStore interface {
	SaveExport(ctx context.Context, name string, data []byte) error
	// Export returns a stored artifact, or domain.ErrExportNotFound.
	Export(ctx context.Context, name string) ([]byte, error)
}

const downloadPrefix = "/api/reports/download/"

// ReportPeriod echoes the requested date bounds.
type ReportPeriod struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

type ReportSummary struct {
	TotalResponses    int    `json:"total_responses"`
	ResponseRate      string `json:"response_rate"`
	CompletionTimeAvg string `json:"completion_time_avg"`
}

// SummaryReport combines the real filtered count with fixed narrative text.
type SummaryReport struct {
	GeneratedAt     string        `json:"generated_at"`
	Period          ReportPeriod  `json:"period"`
	Summary         ReportSummary `json:"summary"`
	KeyFindings     []string      `json:"key_findings"`
	Recommendations []string      `json:"recommendations"`
}

// DetailedReport is a canned per-section analysis payload.
type DetailedReport struct {
	SectionAnalysis map[string]any `json:"section_analysis"`
	Recommendations []string       `json:"recommendations"`
	ActionItems     []string       `json:"action_items"`
}

// ResponseRecord is one exported session row.
type ResponseRecord struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name,omitempty"`
	Area        string  `json:"area"`
	Experience  string  `json:"experience"`
	CompletedAt *string `json:"completed_at"`
	IsAnonymous bool    `json:"is_anonymous"`
}

// InlineExport carries export records in the response body (JSON format).
type InlineExport struct {
	Responses    []ResponseRecord `json:"responses"`
	TotalRecords int              `json:"total_records"`
}

// FileExport references a stored artifact instead of inline rows (CSV format).
type FileExport struct {
	DownloadURL  string `json:"download_url"`
	TotalRecords int    `json:"total_records"`
}

type TrendPoint struct {
	Month string  `json:"month"`
	Score float64 `json:"score"`
}

type AreaPerformance struct {
	Area         string  `json:"area"`
	Satisfaction float64 `json:"satisfaction"`
	Productivity int     `json:"productivity"`
}

type ImpedimentFrequency struct {
	Impediment string `json:"impediment"`
	Count      int    `json:"count"`
}

type HierarchyLevel struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// AnalyticsSeries is the hand-authored charting dataset served as-is.
type AnalyticsSeries struct {
	SatisfactionTrend     []TrendPoint          `json:"satisfaction_trend"`
	AreaPerformance       []AreaPerformance     `json:"area_performance"`
	ImpedimentsFrequency  []ImpedimentFrequency `json:"impediments_frequency"`
	HierarchyDistribution []HierarchyLevel      `json:"hierarchy_distribution"`
}

// ReportService produces report payloads and response exports. Reports read
// only completed sessions; CSV renderings are parked in the export store and
// referenced by download URL.
type ReportService struct {
	responses ResponseRepository
	exports   ExportStore
	now       func() time.Time
}

func NewReportService(responses ResponseRepository, exports ExportStore) *ReportService {
	return &ReportService{responses: responses, exports: exports, now: time.Now}
}

// NewReportServiceWithClock is test-only for deterministic timestamps.
func NewReportServiceWithClock(responses ResponseRepository, exports ExportStore, now func() time.Time) *ReportService {
	s := NewReportService(responses, exports)
	s.now = now
	return s
}

// Summary builds the summary report over completed sessions within the
// optional inclusive date bounds. Non-JSON formats park a CSV rendering in the
// export store and return its download reference instead.
func (s *ReportService) Summary(ctx context.Context, dateFrom, dateTo, format string) (*SummaryReport, string, error) {
	filter := ResponseFilter{Status: domain.StatusCompleted}

	if dateFrom != "" {
		from, err := parseReportDate(dateFrom)
		if err != nil {
			return nil, "", err
		}
		filter.CompletedFrom = &from
	}
	if dateTo != "" {
		to, err := parseReportDate(dateTo)
		if err != nil {
			return nil, "", err
		}
		filter.CompletedTo = &to
	}

	responses, err := s.responses.ListResponses(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	report := &SummaryReport{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Period:      ReportPeriod{From: optString(dateFrom), To: optString(dateTo)},
		Summary: ReportSummary{
			TotalResponses:    len(responses),
			ResponseRate:      "85%",
			CompletionTimeAvg: "12 minutos",
		},
		KeyFindings: []string{
			"El 78% de los empleados considera el ambiente laboral como bueno o excelente",
			"La principal área de mejora identificada es la disponibilidad de herramientas",
			"El 65% de los empleados se siente valorado en su trabajo",
			"Se identificaron 3 niveles jerárquicos principales",
		},
		Recommendations: []string{
			"Implementar un sistema de gestión de herramientas y equipos",
			"Establecer reuniones regulares de feedback entre supervisores y empleados",
			"Crear un programa de reconocimiento de empleados",
			"Documentar formalmente la estructura organizacional",
		},
	}

	if format != "" && format != "json" {
		name := fmt.Sprintf("summary_%s_%s", format, s.now().Format("20060102"))
		if err := s.exports.SaveExport(ctx, name, renderSummaryCSV(report)); err != nil {
			return nil, "", err
		}
		return nil, downloadPrefix + name, nil
	}

	return report, "", nil
}

// Detailed returns the canned analysis for the two supported sections; any
// other section yields an empty analysis. The area parameter is accepted for
// API compatibility but has no effect.
func (s *ReportService) Detailed(_ context.Context, section, _ string) DetailedReport {
	report := DetailedReport{
		SectionAnalysis: map[string]any{},
		Recommendations: []string{},
		ActionItems:     []string{},
	}

	switch section {
	case "Ambiente Laboral":
		report.SectionAnalysis = map[string]any{
			"section_name":       "Ambiente Laboral",
			"response_count":     25,
			"satisfaction_score": 3.8,
			"key_metrics": map[string]float64{
				"ambiente_general":     3.8,
				"valoracion_personal":  3.5,
				"comunicacion_equipos": 3.6,
			},
			"trends":        "Mejora gradual en los últimos 6 meses",
			"areas_concern": []string{"Valoración personal", "Comunicación entre turnos"},
		}
		report.Recommendations = []string{
			"Implementar programa de reconocimiento mensual",
			"Establecer reuniones de coordinación entre turnos",
			"Crear espacios de descanso más cómodos",
		}
		report.ActionItems = []string{
			"Diseñar sistema de reconocimiento - Responsable: RRHH - Plazo: 30 días",
			"Programar reuniones inter-turno - Responsable: Supervisores - Plazo: 15 días",
			"Evaluar espacios comunes - Responsable: Administración - Plazo: 45 días",
		}
	case "Estructura Organizacional":
		report.SectionAnalysis = map[string]any{
			"section_name":            "Estructura Organizacional",
			"response_count":          25,
			"clarity_score":           2.9,
			"hierarchy_levels":        3,
			"span_of_control_avg":     4.2,
			"areas_unclear_hierarchy": []string{"Área de limpieza", "Seguridad nocturna"},
		}
		report.Recommendations = []string{
			"Crear organigrama visual oficial",
			"Definir roles y responsabilidades por escrito",
			"Establecer líneas de reporte claras",
		}
		report.ActionItems = []string{
			"Documentar organigrama - Responsable: Gerencia - Plazo: 20 días",
			"Crear manual de roles - Responsable: RRHH - Plazo: 30 días",
			"Comunicar estructura a todo el personal - Responsable: Gerencia - Plazo: 35 días",
		}
	}

	return report
}

// ExportResponses emits one record per completed session, optionally filtered
// by exact area. Personal data (the display name, anonymized for anonymous
// sessions) is included only on request. CSV output is stored and referenced.
func (s *ReportService) ExportResponses(ctx context.Context, format string, includePersonalData bool, area string) (*InlineExport, *FileExport, error) {
	responses, err := s.responses.ListResponses(ctx, ResponseFilter{Status: domain.StatusCompleted, Area: area})
	if err != nil {
		return nil, nil, err
	}

	if format == "csv" {
		name := fmt.Sprintf("responses_%s_%s.csv", s.now().Format("20060102_150405"), uuid.NewString()[:8])
		if err := s.exports.SaveExport(ctx, name, renderResponsesCSV(responses, includePersonalData)); err != nil {
			return nil, nil, err
		}
		return nil, &FileExport{DownloadURL: downloadPrefix + name, TotalRecords: len(responses)}, nil
	}

	records := make([]ResponseRecord, 0, len(responses))
	for i := range responses {
		response := &responses[i]
		record := ResponseRecord{
			ID:          response.ID,
			Area:        response.EmployeeArea,
			Experience:  response.WorkExperience,
			IsAnonymous: response.IsAnonymous,
		}
		if response.CompletedAt != nil {
			completed := response.CompletedAt.Format(time.RFC3339)
			record.CompletedAt = &completed
		}
		if includePersonalData {
			name := response.DisplayName()
			record.Name = &name
		}
		records = append(records, record)
	}

	return &InlineExport{Responses: records, TotalRecords: len(records)}, nil, nil
}

// Download fetches a previously exported artifact by its reference name.
func (s *ReportService) Download(ctx context.Context, name string) ([]byte, error) {
	return s.exports.Export(ctx, name)
}

// Analytics returns the hand-authored charting series. Entirely static.
func (s *ReportService) Analytics(_ context.Context) AnalyticsSeries {
	return AnalyticsSeries{
		SatisfactionTrend: []TrendPoint{
			{Month: "Enero", Score: 3.2},
			{Month: "Febrero", Score: 3.4},
			{Month: "Marzo", Score: 3.8},
			{Month: "Abril", Score: 3.7},
			{Month: "Mayo", Score: 3.9},
		},
		AreaPerformance: []AreaPerformance{
			{Area: "Mecánica", Satisfaction: 4.1, Productivity: 85},
			{Area: "Administración", Satisfaction: 3.8, Productivity: 92},
			{Area: "Ventas", Satisfaction: 3.6, Productivity: 78},
			{Area: "Limpieza", Satisfaction: 3.9, Productivity: 88},
		},
		ImpedimentsFrequency: []ImpedimentFrequency{
			{Impediment: "Falta de herramientas", Count: 12},
			{Impediment: "Problemas de comunicación", Count: 8},
			{Impediment: "Sobrecarga de trabajo", Count: 6},
			{Impediment: "Falta de capacitación", Count: 4},
		},
		HierarchyDistribution: []HierarchyLevel{
			{Level: "Gerencia", Count: 2},
			{Level: "Supervisores", Count: 5},
			{Level: "Técnicos", Count: 15},
			{Level: "Auxiliares", Count: 8},
		},
	}
}

// reportDateLayouts accepts the ISO-8601 shapes clients actually send.
var reportDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseReportDate(value string) (time.Time, error) {
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrInvalidDateRange
}

func renderResponsesCSV(responses []domain.SurveyResponse, includePersonalData bool) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Área", "Experiencia", "Fecha Completado"}
	if includePersonalData {
		header = append(header[:1], append([]string{"Nombre"}, header[1:]...)...)
	}
	_ = w.Write(header)

	for i := range responses {
		response := &responses[i]
		completed := ""
		if response.CompletedAt != nil {
			completed = response.CompletedAt.Format("2006-01-02 15:04")
		}
		row := []string{strconv.FormatInt(response.ID, 10), response.EmployeeArea, response.WorkExperience, completed}
		if includePersonalData {
			row = append(row[:1], append([]string{response.DisplayName()}, row[1:]...)...)
		}
		_ = w.Write(row)
	}

	w.Flush()
	return buf.Bytes()
}

func renderSummaryCSV(report *SummaryReport) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"generated_at", report.GeneratedAt})
	_ = w.Write([]string{"total_responses", strconv.Itoa(report.Summary.TotalResponses)})
	_ = w.Write([]string{"response_rate", report.Summary.ResponseRate})
	_ = w.Write([]string{"completion_time_avg", report.Summary.CompletionTimeAvg})
	for _, finding := range report.KeyFindings {
		_ = w.Write([]string{"key_finding", finding})
	}
	for _, recommendation := range report.Recommendations {
		_ = w.Write([]string{"recommendation", recommendation})
	}
	w.Flush()
	return buf.Bytes()
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
