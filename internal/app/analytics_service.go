package app

import (
	"context"
	"math"
	"sort"
	"strings"

	"powercars-survey-service/internal/domain"
)

// Question-text fragments used to locate analytics-relevant questions. These
// mirror the seeded questionnaire wording; keep both in sync.
const (
	fragmentArea       = "área trabajas"
	fragmentExperience = "tiempo llevas trabajando"
	fragmentClimate    = "ambiente laboral"
	fragmentRole       = "rol específico"
	fragmentSupervisor = "líder directo"
	fragmentImpediment = "impedimento"
	fragmentImpDetail  = "especifica cuáles"
)

// satisfactionScores maps workplace-climate ratings to 5..1. Unmapped answers
// contribute nothing to score sums but still count in distributions.
var satisfactionScores = map[string]int{
	"Excelente": 5,
	"Muy bueno": 4,
	"Bueno":     3,
	"Regular":   2,
	"Malo":      1,
}

type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

type ExperienceCount struct {
	Experience string `json:"experience"`
	Count      int    `json:"count"`
}

// DashboardStats is the payload of GET /api/dashboard/stats.
type DashboardStats struct {
	TotalResponses        int               `json:"total_responses"`
	CompletedResponses    int               `json:"completed_responses"`
	CompletionRate        float64           `json:"completion_rate"`
	ResponsesByArea       []AreaCount       `json:"responses_by_area"`
	ResponsesByExperience []ExperienceCount `json:"responses_by_experience"`
}

type RatingCount struct {
	Rating     string  `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type OverallSatisfaction struct {
	Average      float64       `json:"average"`
	Distribution []RatingCount `json:"distribution"`
}

type AreaSatisfaction struct {
	Area    string  `json:"area"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// SatisfactionAnalysis is the payload of GET /api/dashboard/satisfaction.
type SatisfactionAnalysis struct {
	OverallSatisfaction OverallSatisfaction `json:"overall_satisfaction"`
	SatisfactionByArea  []AreaSatisfaction  `json:"satisfaction_by_area"`
	SatisfactionTrends  []struct{}          `json:"satisfaction_trends"`
}

type DirectReport struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Area string `json:"area"`
}

type SupervisorGroup struct {
	Supervisor    string         `json:"supervisor"`
	DirectReports []DirectReport `json:"direct_reports"`
	SpanOfControl int            `json:"span_of_control"`
}

// HierarchyAnalysis is the payload of GET /api/dashboard/hierarchy.
type HierarchyAnalysis struct {
	OrganizationalChart        []SupervisorGroup `json:"organizational_chart"`
	ManagementLevels           int               `json:"management_levels"`
	AreasWithoutClearHierarchy []string          `json:"areas_without_clear_hierarchy"`
}

type ImpedimentCount struct {
	Impediment    string   `json:"impediment"`
	Frequency     int      `json:"frequency"`
	Percentage    float64  `json:"percentage"`
	AffectedAreas []string `json:"affected_areas"`
}

type ImprovementSuggestion struct {
	Suggestion string `json:"suggestion"`
	Frequency  int    `json:"frequency"`
	Category   string `json:"category"`
}

type TrainingNeed struct {
	TrainingType string   `json:"training_type"`
	Requests     int      `json:"requests"`
	Areas        []string `json:"areas"`
}

// IssuesAnalysis is the payload of GET /api/dashboard/issues.
type IssuesAnalysis struct {
	CommonImpediments      []ImpedimentCount       `json:"common_impediments"`
	ImprovementSuggestions []ImprovementSuggestion `json:"improvement_suggestions"`
	TrainingNeeds          []TrainingNeed          `json:"training_needs"`
}

// AnalyticsService computes dashboard aggregates fresh from stored rows on
// every call. Operations degrade to empty payloads when the questions or data
// they depend on are absent; only store failures surface as errors.
type AnalyticsService struct {
	templates TemplateRepository
	responses ResponseRepository
	answers   AnswerRepository
}

func NewAnalyticsService(templates TemplateRepository, responses ResponseRepository, answers AnswerRepository) *AnalyticsService {
	return &AnalyticsService{templates: templates, responses: responses, answers: answers}
}

// DashboardStats aggregates session counts plus per-area and per-tenure answer
// counts. Answer counts include in-progress sessions on purpose.
func (s *AnalyticsService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	total, completed, err := s.responses.CountResponses(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	rate := 0.0
	if total > 0 {
		rate = round2(float64(completed) / float64(total) * 100)
	}

	stats := DashboardStats{
		TotalResponses:        total,
		CompletedResponses:    completed,
		CompletionRate:        rate,
		ResponsesByArea:       []AreaCount{},
		ResponsesByExperience: []ExperienceCount{},
	}

	areaCounts, err := s.answerTextCounts(ctx, fragmentArea)
	if err != nil {
		return DashboardStats{}, err
	}
	for _, c := range areaCounts {
		stats.ResponsesByArea = append(stats.ResponsesByArea, AreaCount{Area: c.text, Count: c.count})
	}

	expCounts, err := s.answerTextCounts(ctx, fragmentExperience)
	if err != nil {
		return DashboardStats{}, err
	}
	for _, c := range expCounts {
		stats.ResponsesByExperience = append(stats.ResponsesByExperience, ExperienceCount{Experience: c.text, Count: c.count})
	}

	return stats, nil
}

// SatisfactionAnalysis builds the workplace-climate rating distribution and
// weighted average. The per-area breakdown reproduces the legacy aggregation,
// which groups by the rating text itself rather than the respondent's area;
// see DESIGN.md before changing it.
func (s *AnalyticsService) SatisfactionAnalysis(ctx context.Context) (SatisfactionAnalysis, error) {
	analysis := SatisfactionAnalysis{
		OverallSatisfaction: OverallSatisfaction{Distribution: []RatingCount{}},
		SatisfactionByArea:  []AreaSatisfaction{},
		SatisfactionTrends:  []struct{}{},
	}

	climate, err := s.templates.QuestionByTextLike(ctx, fragmentClimate)
	if err != nil {
		return analysis, err
	}
	if climate == nil {
		return analysis, nil
	}

	counts, err := s.answerTextCounts(ctx, fragmentClimate)
	if err != nil {
		return analysis, err
	}

	total := 0
	for _, c := range counts {
		total += c.count
	}

	score := 0
	for _, c := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(c.count) / float64(total) * 100)
		}
		analysis.OverallSatisfaction.Distribution = append(analysis.OverallSatisfaction.Distribution, RatingCount{
			Rating:     c.text,
			Count:      c.count,
			Percentage: percentage,
		})
		score += satisfactionScores[c.text] * c.count
	}
	if total > 0 {
		analysis.OverallSatisfaction.Average = round2(float64(score) / float64(total))
	}

	area, err := s.templates.QuestionByTextLike(ctx, fragmentArea)
	if err != nil {
		return analysis, err
	}
	if area != nil {
		for _, c := range counts {
			analysis.SatisfactionByArea = append(analysis.SatisfactionByArea, AreaSatisfaction{
				Area:    c.text,
				Average: round2(float64(satisfactionScores[c.text])),
				Count:   c.count,
			})
		}
	}

	return analysis, nil
}

// HierarchyAnalysis infers an organizational chart from the role and
// supervisor free-text answers of completed sessions.
func (s *AnalyticsService) HierarchyAnalysis(ctx context.Context) (HierarchyAnalysis, error) {
	analysis := HierarchyAnalysis{
		OrganizationalChart:        []SupervisorGroup{},
		AreasWithoutClearHierarchy: []string{},
	}

	role, err := s.templates.QuestionByTextLike(ctx, fragmentRole)
	if err != nil {
		return analysis, err
	}
	supervisor, err := s.templates.QuestionByTextLike(ctx, fragmentSupervisor)
	if err != nil {
		return analysis, err
	}
	if role == nil || supervisor == nil {
		return analysis, nil
	}

	completed, err := s.responses.ListResponses(ctx, ResponseFilter{Status: domain.StatusCompleted})
	if err != nil {
		return analysis, err
	}

	groups := make(map[string][]DirectReport)
	for i := range completed {
		response := &completed[i]

		roleAnswer, err := s.answers.AnswerFor(ctx, response.ID, role.ID)
		if err != nil {
			return analysis, err
		}
		supervisorAnswer, err := s.answers.AnswerFor(ctx, response.ID, supervisor.ID)
		if err != nil {
			return analysis, err
		}
		if roleAnswer == nil || supervisorAnswer == nil {
			continue
		}

		name := supervisorAnswer.Text()
		groups[name] = append(groups[name], DirectReport{
			Name: response.DisplayName(),
			Role: roleAnswer.Text(),
			Area: response.EmployeeArea,
		})
	}

	supervisors := make([]string, 0, len(groups))
	for name := range groups {
		supervisors = append(supervisors, name)
	}
	sort.Strings(supervisors)

	for _, name := range supervisors {
		reports := groups[name]
		analysis.OrganizationalChart = append(analysis.OrganizationalChart, SupervisorGroup{
			Supervisor:    name,
			DirectReports: reports,
			SpanOfControl: len(reports),
		})
	}
	// Distinct supervisor groups, not true tree depth.
	analysis.ManagementLevels = len(analysis.OrganizationalChart)

	return analysis, nil
}

// IssuesAnalysis aggregates the impediment yes/no distribution and keyword-
// categorizes free-text impediment details into improvement suggestions.
func (s *AnalyticsService) IssuesAnalysis(ctx context.Context) (IssuesAnalysis, error) {
	analysis := IssuesAnalysis{
		CommonImpediments:      []ImpedimentCount{},
		ImprovementSuggestions: []ImprovementSuggestion{},
		TrainingNeeds:          staticTrainingNeeds(),
	}

	impediment, err := s.templates.QuestionByTextLike(ctx, fragmentImpediment)
	if err != nil {
		return analysis, err
	}
	detail, err := s.templates.QuestionByTextLike(ctx, fragmentImpDetail)
	if err != nil {
		return analysis, err
	}
	if impediment == nil || detail == nil {
		return analysis, nil
	}

	counts, err := s.answerTextCounts(ctx, fragmentImpediment)
	if err != nil {
		return analysis, err
	}
	total := 0
	for _, c := range counts {
		total += c.count
	}
	for _, c := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(c.count) / float64(total) * 100)
		}
		analysis.CommonImpediments = append(analysis.CommonImpediments, ImpedimentCount{
			Impediment:    c.text,
			Frequency:     c.count,
			Percentage:    percentage,
			AffectedAreas: []string{},
		})
	}

	details, err := s.answers.AnswersByQuestion(ctx, detail.ID)
	if err != nil {
		return analysis, err
	}
	categories := make(map[string]int)
	for i := range details {
		text := details[i].Text()
		if text == "" {
			continue
		}
		categories[categorizeImpediment(text)]++
	}
	for _, category := range impedimentCategories {
		if n := categories[category]; n > 0 {
			analysis.ImprovementSuggestions = append(analysis.ImprovementSuggestions, ImprovementSuggestion{
				Suggestion: category,
				Frequency:  n,
				Category:   "Operacional",
			})
		}
	}

	return analysis, nil
}

// impedimentCategories lists output categories in match-priority order.
var impedimentCategories = []string{
	"Falta de herramientas/equipos",
	"Falta de capacitación",
	"Problemas de comunicación",
	"Sobrecarga de trabajo",
	"Otros",
}

// categorizeImpediment keyword-matches free text into a category; the first
// matching rule wins.
func categorizeImpediment(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "herramienta") || strings.Contains(lower, "equipo"):
		return "Falta de herramientas/equipos"
	case strings.Contains(lower, "capacitación") || strings.Contains(lower, "entrenamiento"):
		return "Falta de capacitación"
	case strings.Contains(lower, "comunicación"):
		return "Problemas de comunicación"
	case strings.Contains(lower, "tiempo") || strings.Contains(lower, "sobrecarga"):
		return "Sobrecarga de trabajo"
	default:
		return "Otros"
	}
}

func staticTrainingNeeds() []TrainingNeed {
	return []TrainingNeed{
		{TrainingType: "Capacitación técnica", Requests: 5, Areas: []string{"Mecánica"}},
		{TrainingType: "Atención al cliente", Requests: 3, Areas: []string{"Ventas", "Administración"}},
		{TrainingType: "Liderazgo", Requests: 2, Areas: []string{"Administración"}},
	}
}

type textCount struct {
	text  string
	count int
}

// answerTextCounts groups all answers of the question matching the fragment by
// their text slot. Answers whose text slot is empty are skipped. Results are
// sorted by count descending, then text, so payloads are deterministic.
func (s *AnalyticsService) answerTextCounts(ctx context.Context, fragment string) ([]textCount, error) {
	question, err := s.templates.QuestionByTextLike(ctx, fragment)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, nil
	}

	answers, err := s.answers.AnswersByQuestion(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for i := range answers {
		if text := answers[i].Text(); text != "" {
			counts[text]++
		}
	}

	result := make([]textCount, 0, len(counts))
	for text, count := range counts {
		result = append(result, textCount{text: text, count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].count != result[j].count {
			return result[i].count > result[j].count
		}
		return result[i].text < result[j].text
	})
	return result, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
