package app_test

import (
	"context"
	"testing"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/infra/memory"
)

// seededFixture seeds the default questionnaire and returns the services plus
// a question lookup by text fragment.
func seededFixture(t *testing.T) (*memory.Store, *app.SurveyService, *app.AnalyticsService) {
	t.Helper()
	store := memory.NewStore()
	survey := app.NewSurveyService(store, store, store)
	if _, err := survey.ActiveTemplate(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, survey, app.NewAnalyticsService(store, store, store)
}

func questionID(t *testing.T, store *memory.Store, fragment string) int64 {
	t.Helper()
	q, err := store.QuestionByTextLike(context.Background(), fragment)
	if err != nil {
		t.Fatalf("find question: %v", err)
	}
	if q == nil {
		t.Fatalf("no question matching %q", fragment)
	}
	return q.ID
}

func startSession(t *testing.T, survey *app.SurveyService, req app.StartRequest) int64 {
	t.Helper()
	result, err := survey.StartSession(context.Background(), req)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return result.ResponseID
}

func TestDashboardStatsCompletionRate(t *testing.T) {
	ctx := context.Background()
	_, survey, analytics := seededFixture(t)

	stats, err := analytics.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.CompletionRate != 0 || stats.TotalResponses != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}

	var ids []int64
	for i := 0; i < 4; i++ {
		ids = append(ids, startSession(t, survey, app.StartRequest{}))
	}
	for _, id := range ids[:3] {
		if err := survey.CompleteSession(ctx, id); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	stats, err = analytics.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalResponses != 4 || stats.CompletedResponses != 3 {
		t.Fatalf("expected 4/3, got %+v", stats)
	}
	if stats.CompletionRate != 75.0 {
		t.Fatalf("expected rate 75.0, got %v", stats.CompletionRate)
	}
}

func TestDashboardStatsGroupsAreaAnswers(t *testing.T) {
	ctx := context.Background()
	store, survey, analytics := seededFixture(t)
	areaQ := questionID(t, store, "área trabajas")

	// Area answers count even for in-progress sessions.
	for _, area := range []string{"Mecánica", "Mecánica", "Ventas"} {
		id := startSession(t, survey, app.StartRequest{})
		if err := survey.SaveAnswer(ctx, id, areaQ, area); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	stats, err := analytics.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats.ResponsesByArea) != 2 {
		t.Fatalf("expected 2 areas, got %+v", stats.ResponsesByArea)
	}
	if stats.ResponsesByArea[0].Area != "Mecánica" || stats.ResponsesByArea[0].Count != 2 {
		t.Fatalf("expected Mecánica x2 first, got %+v", stats.ResponsesByArea[0])
	}
}

func TestSatisfactionAverage(t *testing.T) {
	ctx := context.Background()
	store, survey, analytics := seededFixture(t)
	climateQ := questionID(t, store, "ambiente laboral")

	for _, rating := range []string{"Excelente", "Excelente", "Bueno", "Malo"} {
		id := startSession(t, survey, app.StartRequest{})
		if err := survey.SaveAnswer(ctx, id, climateQ, rating); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	analysis, err := analytics.SatisfactionAnalysis(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	// (5*2 + 3*1 + 1*1) / 4 = 3.5
	if analysis.OverallSatisfaction.Average != 3.5 {
		t.Fatalf("expected average 3.5, got %v", analysis.OverallSatisfaction.Average)
	}
	if len(analysis.OverallSatisfaction.Distribution) != 3 {
		t.Fatalf("expected 3 distinct ratings, got %+v", analysis.OverallSatisfaction.Distribution)
	}
	top := analysis.OverallSatisfaction.Distribution[0]
	if top.Rating != "Excelente" || top.Count != 2 || top.Percentage != 50.0 {
		t.Fatalf("unexpected top rating entry %+v", top)
	}
	if len(analysis.SatisfactionTrends) != 0 {
		t.Fatalf("expected empty trends placeholder")
	}
}

// The per-area breakdown intentionally reproduces the legacy aggregation: it
// groups by the rating text itself, so each entry carries the rating as its
// area and the rating's mapped score as its average. See DESIGN.md.
func TestSatisfactionByAreaGroupsByRatingText(t *testing.T) {
	ctx := context.Background()
	store, survey, analytics := seededFixture(t)
	climateQ := questionID(t, store, "ambiente laboral")

	for _, rating := range []string{"Excelente", "Excelente", "Bueno", "Malo"} {
		id := startSession(t, survey, app.StartRequest{EmployeeArea: "Mecánica"})
		if err := survey.SaveAnswer(ctx, id, climateQ, rating); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	analysis, err := analytics.SatisfactionAnalysis(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}

	want := []app.AreaSatisfaction{
		{Area: "Excelente", Average: 5.0, Count: 2},
		{Area: "Bueno", Average: 3.0, Count: 1},
		{Area: "Malo", Average: 1.0, Count: 1},
	}
	if len(analysis.SatisfactionByArea) != len(want) {
		t.Fatalf("expected %d groups, got %+v", len(want), analysis.SatisfactionByArea)
	}
	for i, entry := range analysis.SatisfactionByArea {
		if entry != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entry)
		}
	}
	// The respondents' actual area never appears as a group key.
	for _, entry := range analysis.SatisfactionByArea {
		if entry.Area == "Mecánica" {
			t.Fatalf("grouped by respondent area instead of rating text: %+v", entry)
		}
	}
}

func TestHierarchyAnonymizesReports(t *testing.T) {
	ctx := context.Background()
	store, survey, analytics := seededFixture(t)
	roleQ := questionID(t, store, "rol específico")
	supervisorQ := questionID(t, store, "líder directo")

	id := startSession(t, survey, app.StartRequest{EmployeeName: "Juan", EmployeeArea: "Mecánica", IsAnonymous: true})
	if err := survey.SaveAnswer(ctx, id, roleQ, "Mecánico"); err != nil {
		t.Fatalf("role answer: %v", err)
	}
	if err := survey.SaveAnswer(ctx, id, supervisorQ, "Carlos"); err != nil {
		t.Fatalf("supervisor answer: %v", err)
	}
	if err := survey.CompleteSession(ctx, id); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// In-progress sessions are excluded even with both answers present.
	inProgress := startSession(t, survey, app.StartRequest{EmployeeName: "Pedro"})
	_ = survey.SaveAnswer(ctx, inProgress, roleQ, "Vendedor")
	_ = survey.SaveAnswer(ctx, inProgress, supervisorQ, "Carlos")

	analysis, err := analytics.HierarchyAnalysis(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if len(analysis.OrganizationalChart) != 1 {
		t.Fatalf("expected 1 supervisor group, got %+v", analysis.OrganizationalChart)
	}
	group := analysis.OrganizationalChart[0]
	if group.Supervisor != "Carlos" || group.SpanOfControl != 1 {
		t.Fatalf("unexpected group %+v", group)
	}
	if group.DirectReports[0].Name != "Anónimo" {
		t.Fatalf("expected anonymized name, got %q", group.DirectReports[0].Name)
	}
	if analysis.ManagementLevels != 1 {
		t.Fatalf("expected 1 management level, got %d", analysis.ManagementLevels)
	}
	if len(analysis.AreasWithoutClearHierarchy) != 0 {
		t.Fatalf("expected empty unclear-hierarchy list")
	}
}

func TestIssuesCategorization(t *testing.T) {
	ctx := context.Background()
	store, survey, analytics := seededFixture(t)
	impedimentQ := questionID(t, store, "impedimento")
	detailQ := questionID(t, store, "especifica cuáles")

	details := []string{
		"falta de herramienta de diagnóstico",
		"no hay equipo de seguridad",
		"necesito más capacitación",
		"mala comunicación entre turnos",
		"demasiado papeleo",
	}
	for _, detail := range details {
		id := startSession(t, survey, app.StartRequest{})
		if err := survey.SaveAnswer(ctx, id, impedimentQ, "Sí"); err != nil {
			t.Fatalf("impediment answer: %v", err)
		}
		if err := survey.SaveAnswer(ctx, id, detailQ, detail); err != nil {
			t.Fatalf("detail answer: %v", err)
		}
	}

	analysis, err := analytics.IssuesAnalysis(ctx)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if len(analysis.CommonImpediments) != 1 || analysis.CommonImpediments[0].Impediment != "Sí" {
		t.Fatalf("unexpected impediments %+v", analysis.CommonImpediments)
	}
	if analysis.CommonImpediments[0].Percentage != 100.0 {
		t.Fatalf("expected 100%%, got %v", analysis.CommonImpediments[0].Percentage)
	}

	want := map[string]int{
		"Falta de herramientas/equipos": 2,
		"Falta de capacitación":         1,
		"Problemas de comunicación":     1,
		"Otros":                         1,
	}
	if len(analysis.ImprovementSuggestions) != len(want) {
		t.Fatalf("expected %d categories, got %+v", len(want), analysis.ImprovementSuggestions)
	}
	for _, suggestion := range analysis.ImprovementSuggestions {
		if want[suggestion.Suggestion] != suggestion.Frequency {
			t.Fatalf("unexpected frequency for %q: %+v", suggestion.Suggestion, suggestion)
		}
		if suggestion.Category != "Operacional" {
			t.Fatalf("unexpected category %+v", suggestion)
		}
	}
	if len(analysis.TrainingNeeds) != 3 {
		t.Fatalf("expected 3 static training needs, got %d", len(analysis.TrainingNeeds))
	}
}
