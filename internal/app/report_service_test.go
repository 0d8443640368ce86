package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
	"powercars-survey-service/internal/infra/memory"
)

func reportFixture(t *testing.T) (*memory.Store, *app.SurveyService, *app.ReportService, *memory.ExportStore) {
	t.Helper()
	store := memory.NewStore()
	exports := memory.NewExportStore()
	survey := app.NewSurveyService(store, store, store)
	if _, err := survey.ActiveTemplate(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, survey, app.NewReportService(store, exports), exports
}

func TestSummaryFiltersByDateRange(t *testing.T) {
	ctx := context.Background()
	store, survey, reports, _ := reportFixture(t)

	id := startSession(t, survey, app.StartRequest{})
	completedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := store.CompleteResponse(ctx, id, completedAt); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// A second session outside the window.
	other := startSession(t, survey, app.StartRequest{})
	if err := store.CompleteResponse(ctx, other, completedAt.AddDate(0, 2, 0)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	report, downloadURL, err := reports.Summary(ctx, "2025-03-01", "2025-03-31", "json")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if downloadURL != "" {
		t.Fatalf("expected inline report, got download %q", downloadURL)
	}
	if report.Summary.TotalResponses != 1 {
		t.Fatalf("expected 1 response in window, got %d", report.Summary.TotalResponses)
	}
	if len(report.KeyFindings) != 4 || len(report.Recommendations) != 4 {
		t.Fatalf("expected 4 findings and 4 recommendations, got %d/%d", len(report.KeyFindings), len(report.Recommendations))
	}
}

func TestSummaryRejectsBadDates(t *testing.T) {
	_, _, reports, _ := reportFixture(t)

	_, _, err := reports.Summary(context.Background(), "not-a-date", "", "json")
	if err != domain.ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSummaryCSVStoresArtifact(t *testing.T) {
	ctx := context.Background()
	_, _, reports, exports := reportFixture(t)

	report, downloadURL, err := reports.Summary(ctx, "", "", "csv")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if report != nil {
		t.Fatalf("expected no inline report for csv format")
	}
	if !strings.HasPrefix(downloadURL, "/api/reports/download/") {
		t.Fatalf("unexpected download url %q", downloadURL)
	}

	name := strings.TrimPrefix(downloadURL, "/api/reports/download/")
	data, err := exports.Export(ctx, name)
	if err != nil {
		t.Fatalf("stored artifact: %v", err)
	}
	if !strings.Contains(string(data), "response_rate,85%") {
		t.Fatalf("unexpected artifact content:\n%s", data)
	}
}

func TestDetailedCannedSections(t *testing.T) {
	_, _, reports, _ := reportFixture(t)

	ambiente := reports.Detailed(context.Background(), "Ambiente Laboral", "")
	if len(ambiente.Recommendations) != 3 || len(ambiente.ActionItems) != 3 {
		t.Fatalf("unexpected ambiente payload %+v", ambiente)
	}
	if ambiente.SectionAnalysis["section_name"] != "Ambiente Laboral" {
		t.Fatalf("unexpected section analysis %+v", ambiente.SectionAnalysis)
	}

	// The area parameter has no effect.
	same := reports.Detailed(context.Background(), "Ambiente Laboral", "Ventas")
	if len(same.Recommendations) != 3 {
		t.Fatalf("area parameter changed the payload: %+v", same)
	}

	unknown := reports.Detailed(context.Background(), "Cafetería", "")
	if len(unknown.SectionAnalysis) != 0 || len(unknown.Recommendations) != 0 || len(unknown.ActionItems) != 0 {
		t.Fatalf("expected empty payload for unknown section, got %+v", unknown)
	}
}

func TestExportResponsesAnonymization(t *testing.T) {
	ctx := context.Background()
	store, survey, reports, _ := reportFixture(t)

	anonymous := startSession(t, survey, app.StartRequest{EmployeeName: "Juan", EmployeeArea: "Ventas", IsAnonymous: true})
	named := startSession(t, survey, app.StartRequest{EmployeeName: "Ana", EmployeeArea: "Mecánica"})
	inProgress := startSession(t, survey, app.StartRequest{EmployeeArea: "Ventas"})
	_ = inProgress

	now := time.Now()
	if err := store.CompleteResponse(ctx, anonymous, now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.CompleteResponse(ctx, named, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	inline, file, err := reports.ExportResponses(ctx, "json", true, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if file != nil {
		t.Fatalf("expected inline result for json format")
	}
	if inline.TotalRecords != 2 {
		t.Fatalf("expected 2 completed records, got %d", inline.TotalRecords)
	}
	for _, record := range inline.Responses {
		switch record.ID {
		case anonymous:
			if record.Name == nil || *record.Name != "Anónimo" {
				t.Fatalf("expected anonymized name, got %+v", record)
			}
		case named:
			if record.Name == nil || *record.Name != "Ana" {
				t.Fatalf("expected real name, got %+v", record)
			}
		}
	}

	// Without personal data no names appear at all.
	inline, _, err = reports.ExportResponses(ctx, "json", false, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, record := range inline.Responses {
		if record.Name != nil {
			t.Fatalf("expected no names, got %+v", record)
		}
	}

	// Area filter.
	inline, _, err = reports.ExportResponses(ctx, "json", false, "Ventas")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if inline.TotalRecords != 1 {
		t.Fatalf("expected 1 Ventas record, got %d", inline.TotalRecords)
	}
}

func TestExportResponsesCSV(t *testing.T) {
	ctx := context.Background()
	store, survey, reports, exports := reportFixture(t)

	id := startSession(t, survey, app.StartRequest{EmployeeName: "Ana", EmployeeArea: "Mecánica"})
	if err := store.CompleteResponse(ctx, id, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}

	inline, file, err := reports.ExportResponses(ctx, "csv", true, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if inline != nil {
		t.Fatalf("expected no inline rows for csv format")
	}
	if file.TotalRecords != 1 || file.DownloadURL == "" {
		t.Fatalf("unexpected result %+v", file)
	}

	name := strings.TrimPrefix(file.DownloadURL, "/api/reports/download/")
	data, err := exports.Export(ctx, name)
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "Nombre") || !strings.Contains(content, "Ana") {
		t.Fatalf("unexpected csv:\n%s", content)
	}
}

func TestAnalyticsSeriesIsStatic(t *testing.T) {
	_, _, reports, _ := reportFixture(t)

	series := reports.Analytics(context.Background())
	if len(series.SatisfactionTrend) != 5 {
		t.Fatalf("expected 5 trend points, got %d", len(series.SatisfactionTrend))
	}
	if series.SatisfactionTrend[0].Month != "Enero" {
		t.Fatalf("unexpected first month %q", series.SatisfactionTrend[0].Month)
	}
	if len(series.AreaPerformance) != 4 || len(series.ImpedimentsFrequency) != 4 || len(series.HierarchyDistribution) != 4 {
		t.Fatalf("unexpected series sizes %+v", series)
	}
}

func TestDownloadMissingArtifact(t *testing.T) {
	_, _, reports, _ := reportFixture(t)

	_, err := reports.Download(context.Background(), "nope.csv")
	if err != domain.ErrExportNotFound {
		t.Fatalf("expected ErrExportNotFound, got %v", err)
	}
}
