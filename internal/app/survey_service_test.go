package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
	"powercars-survey-service/internal/infra/memory"
)

func newSurveyService(store *memory.Store) *app.SurveyService {
	return app.NewSurveyService(store, store, store)
}

func TestActiveTemplateSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := newSurveyService(store)

	first, err := service.ActiveTemplate(ctx)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := service.ActiveTemplate(ctx)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same template both calls, got %d and %d", first.ID, second.ID)
	}
	if first.Title != "Encuesta Organizacional PowerCars 2025" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if len(first.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(first.Sections))
	}
	total := 0
	for _, section := range first.Sections {
		total += len(section.Questions)
	}
	if total != 18 {
		t.Fatalf("expected 18 questions, got %d", total)
	}

	questions, err := store.QuestionsByTemplate(ctx, first.ID)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 18 {
		t.Fatalf("expected 18 stored questions after two calls, got %d", len(questions))
	}
}

func TestStartSessionWithoutTemplate(t *testing.T) {
	service := newSurveyService(memory.NewStore())

	_, err := service.StartSession(context.Background(), app.StartRequest{EmployeeArea: "Ventas"})
	if err != domain.ErrTemplateNotFound {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestStartAndCompleteSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := newSurveyService(store)

	if _, err := service.ActiveTemplate(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := service.StartSession(ctx, app.StartRequest{EmployeeName: "Juan", EmployeeArea: "Mecánica"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if result.SessionToken != "session_1" {
		t.Fatalf("expected session_1, got %q", result.SessionToken)
	}

	if err := service.CompleteSession(ctx, result.ResponseID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	session, err := store.Response(ctx, result.ResponseID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if session.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %q", session.Status)
	}
	if session.CompletedAt == nil || session.CompletedAt.Before(session.StartedAt) {
		t.Fatalf("expected completed_at >= started_at, got %v / %v", session.CompletedAt, session.StartedAt)
	}
}

func TestCompleteSessionMissing(t *testing.T) {
	service := newSurveyService(memory.NewStore())
	if err := service.CompleteSession(context.Background(), 42); err != domain.ErrResponseNotFound {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}
}

func TestSaveAnswerUpsertsSingleRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := newSurveyService(store)

	if _, err := service.ActiveTemplate(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	result, err := service.StartSession(ctx, app.StartRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	questions, err := store.QuestionsByTemplate(ctx, 1)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	questionID := questions[0].ID

	if err := service.SaveAnswer(ctx, result.ResponseID, questionID, "primera"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := service.SaveAnswer(ctx, result.ResponseID, questionID, "segunda"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	answers, err := store.AnswersByQuestion(ctx, questionID)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected a single answer row, got %d", len(answers))
	}
	if answers[0].Text() != "segunda" {
		t.Fatalf("expected last write to win, got %q", answers[0].Text())
	}
}

func TestSaveAnswerClassifiesValueShapes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := newSurveyService(store)

	if _, err := service.ActiveTemplate(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	result, err := service.StartSession(ctx, app.StartRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	questions, _ := store.QuestionsByTemplate(ctx, 1)
	questionID := questions[0].ID

	// Numeric value lands in the numeric slot.
	if err := service.SaveAnswer(ctx, result.ResponseID, questionID, float64(8)); err != nil {
		t.Fatalf("numeric save: %v", err)
	}
	answer, err := store.AnswerFor(ctx, result.ResponseID, questionID)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer.AnswerNumeric == nil || *answer.AnswerNumeric != 8 {
		t.Fatalf("expected numeric slot 8, got %+v", answer)
	}
	if answer.AnswerText != nil || answer.AnswerJSON != nil {
		t.Fatalf("expected other slots cleared, got %+v", answer)
	}

	// Overwriting with a structured value clears the numeric slot.
	if err := service.SaveAnswer(ctx, result.ResponseID, questionID, []any{"a", "b"}); err != nil {
		t.Fatalf("structured save: %v", err)
	}
	answer, _ = store.AnswerFor(ctx, result.ResponseID, questionID)
	if answer.AnswerNumeric != nil || answer.AnswerText != nil {
		t.Fatalf("expected only structured slot, got %+v", answer)
	}
	var decoded []string
	if err := json.Unmarshal(answer.AnswerJSON, &decoded); err != nil || len(decoded) != 2 {
		t.Fatalf("expected 2-element array, got %s (%v)", answer.AnswerJSON, err)
	}
}

func TestSaveAnswerMissingSessionOrQuestion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := newSurveyService(store)

	if _, err := service.ActiveTemplate(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	result, err := service.StartSession(ctx, app.StartRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := service.SaveAnswer(ctx, 999, 1, "x"); err != domain.ErrResponseNotFound {
		t.Fatalf("expected ErrResponseNotFound, got %v", err)
	}
	if err := service.SaveAnswer(ctx, result.ResponseID, 999, "x"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestCompleteRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	current := base
	service := app.NewSurveyServiceWithClock(store, store, store, func() time.Time { return current })

	if _, err := service.ActiveTemplate(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	result, err := service.StartSession(ctx, app.StartRequest{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := service.CompleteSession(ctx, result.ResponseID); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	current = base.Add(time.Hour)
	if err := service.CompleteSession(ctx, result.ResponseID); err != nil {
		t.Fatalf("second complete: %v", err)
	}

	session, _ := store.Response(ctx, result.ResponseID)
	if !session.CompletedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected refreshed completion time, got %v", session.CompletedAt)
	}
}
