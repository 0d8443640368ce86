package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"powercars-survey-service/internal/domain"
)

// TemplateRepository stores survey templates and their questions.
type TemplateRepository interface {
	// ActiveTemplate returns the single active template, or
	// domain.ErrTemplateNotFound when none exists.
	ActiveTemplate(ctx context.Context) (*domain.SurveyTemplate, error)
	// CreateTemplate persists a template together with its questions.
	CreateTemplate(ctx context.Context, template *domain.SurveyTemplate, questions []domain.Question) error
	// QuestionsByTemplate returns a template's questions sorted by order index.
	QuestionsByTemplate(ctx context.Context, templateID int64) ([]domain.Question, error)
	// Question returns a question by ID, or domain.ErrQuestionNotFound.
	Question(ctx context.Context, id int64) (*domain.Question, error)
	// QuestionByTextLike returns the first question (lowest ID) whose text
	// contains the given fragment, or (nil, nil) when none matches.
	QuestionByTextLike(ctx context.Context, fragment string) (*domain.Question, error)
}

// ResponseRepository stores response sessions.
type ResponseRepository interface {
	CreateResponse(ctx context.Context, response *domain.SurveyResponse) error
	// Response returns a session by ID, or domain.ErrResponseNotFound.
	Response(ctx context.Context, id int64) (*domain.SurveyResponse, error)
	// CompleteResponse unconditionally marks a session completed at the given
	// time; domain.ErrResponseNotFound when the session is absent.
	CompleteResponse(ctx context.Context, id int64, completedAt time.Time) error
	ListResponses(ctx context.Context, filter ResponseFilter) ([]domain.SurveyResponse, error)
	// CountResponses returns total and completed session counts.
	CountResponses(ctx context.Context) (total, completed int, err error)
}

// AnswerRepository stores per-question answers.
type AnswerRepository interface {
	// UpsertAnswer inserts or fully overwrites the answer for the
	// (response, question) pair. The operation must be atomic: concurrent
	// writers may race but must never leave mixed value slots.
	UpsertAnswer(ctx context.Context, answer *domain.QuestionAnswer) error
	AnswersByQuestion(ctx context.Context, questionID int64) ([]domain.QuestionAnswer, error)
	// AnswerFor returns the answer for the pair, or (nil, nil) when absent.
	AnswerFor(ctx context.Context, responseID, questionID int64) (*domain.QuestionAnswer, error)
}

// ResponseFilter narrows ListResponses. Zero values mean "no constraint".
type ResponseFilter struct {
	Status        domain.ResponseStatus
	Area          string
	CompletedFrom *time.Time
	CompletedTo   *time.Time
}

// Section groups a template's questions under their section label.
type Section struct {
	Name      string            `json:"name"`
	Questions []domain.Question `json:"questions"`
}

// TemplateView is the outward shape of the active questionnaire.
type TemplateView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

// StartRequest carries the respondent fields accepted when opening a session.
type StartRequest struct {
	EmployeeName   string
	EmployeeArea   string
	WorkExperience string
	IsAnonymous    bool
	IPAddress      string
	UserAgent      string
}

// StartResult identifies a newly opened session. SessionToken is a client-side
// correlation handle derived from the ID, not a credential.
type StartResult struct {
	ResponseID   int64  `json:"response_id"`
	SessionToken string `json:"session_token"`
}

// SurveyService covers the questionnaire and response-session use cases.
type SurveyService struct {
	templates TemplateRepository
	responses ResponseRepository
	answers   AnswerRepository
	now       func() time.Time
	seed      singleflight.Group
}

func NewSurveyService(templates TemplateRepository, responses ResponseRepository, answers AnswerRepository) *SurveyService {
	return &SurveyService{
		templates: templates,
		responses: responses,
		answers:   answers,
		now:       time.Now,
	}
}

// NewSurveyServiceWithClock is test-only for deterministic timestamps.
func NewSurveyServiceWithClock(templates TemplateRepository, responses ResponseRepository, answers AnswerRepository, now func() time.Time) *SurveyService {
	s := NewSurveyService(templates, responses, answers)
	s.now = now
	return s
}

// ActiveTemplate returns the active questionnaire, seeding the default one if
// none exists yet. Seeding is singleflight-guarded and re-checks the store, so
// concurrent first calls create exactly one active template.
func (s *SurveyService) ActiveTemplate(ctx context.Context) (TemplateView, error) {
	template, err := s.templates.ActiveTemplate(ctx)
	if err == domain.ErrTemplateNotFound {
		template, err = s.seedDefault(ctx)
	}
	if err != nil {
		return TemplateView{}, err
	}

	questions, err := s.templates.QuestionsByTemplate(ctx, template.ID)
	if err != nil {
		return TemplateView{}, err
	}

	return TemplateView{
		ID:          template.ID,
		Title:       template.Title,
		Description: template.Description,
		Sections:    groupSections(questions),
	}, nil
}

func (s *SurveyService) seedDefault(ctx context.Context) (*domain.SurveyTemplate, error) {
	result, err, _ := s.seed.Do("default-template", func() (interface{}, error) {
		// Re-check in case another goroutine seeded while we waited.
		if existing, err := s.templates.ActiveTemplate(ctx); err == nil {
			return existing, nil
		} else if err != domain.ErrTemplateNotFound {
			return nil, err
		}

		template, questions := defaultTemplate()
		template.CreatedAt = s.now()
		if err := s.templates.CreateTemplate(ctx, &template, questions); err != nil {
			return nil, err
		}
		return &template, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.SurveyTemplate), nil
}

// StartSession opens a response session against the active template. Unlike
// ActiveTemplate it does not seed: with no active questionnaire it fails with
// domain.ErrTemplateNotFound.
func (s *SurveyService) StartSession(ctx context.Context, req StartRequest) (StartResult, error) {
	template, err := s.templates.ActiveTemplate(ctx)
	if err != nil {
		return StartResult{}, err
	}

	response := &domain.SurveyResponse{
		SurveyTemplateID: template.ID,
		EmployeeName:     req.EmployeeName,
		EmployeeArea:     req.EmployeeArea,
		WorkExperience:   req.WorkExperience,
		IsAnonymous:      req.IsAnonymous,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
		StartedAt:        s.now(),
		Status:           domain.StatusInProgress,
	}
	if err := s.responses.CreateResponse(ctx, response); err != nil {
		return StartResult{}, err
	}

	return StartResult{
		ResponseID:   response.ID,
		SessionToken: fmt.Sprintf("session_%d", response.ID),
	}, nil
}

// SaveAnswer records a value for (session, question), overwriting any prior
// answer for the pair. The value's shape picks the slot: object/array goes to
// the structured slot, numbers to the numeric slot, everything else is coerced
// to text. Replaying the same call yields the same final state.
func (s *SurveyService) SaveAnswer(ctx context.Context, responseID, questionID int64, value any) error {
	if _, err := s.responses.Response(ctx, responseID); err != nil {
		return err
	}
	if _, err := s.templates.Question(ctx, questionID); err != nil {
		return err
	}

	answer := &domain.QuestionAnswer{
		SurveyResponseID: responseID,
		QuestionID:       questionID,
		AnsweredAt:       s.now(),
	}
	classifyAnswer(value, answer)

	return s.answers.UpsertAnswer(ctx, answer)
}

// CompleteSession marks the session completed and stamps the completion time.
// Idempotent: completing an already-completed session refreshes the stamp. No
// required-question check is performed; the survey UI owns that concern.
func (s *SurveyService) CompleteSession(ctx context.Context, responseID int64) error {
	return s.responses.CompleteResponse(ctx, responseID, s.now())
}

// classifyAnswer fills exactly one value slot based on the decoded JSON shape.
func classifyAnswer(value any, answer *domain.QuestionAnswer) {
	switch v := value.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err == nil {
			answer.AnswerJSON = raw
			return
		}
		text := fmt.Sprintf("%v", v)
		answer.AnswerText = &text
	case float64:
		answer.AnswerNumeric = &v
	case int:
		f := float64(v)
		answer.AnswerNumeric = &f
	case int64:
		f := float64(v)
		answer.AnswerNumeric = &f
	case string:
		answer.AnswerText = &v
	case nil:
		empty := ""
		answer.AnswerText = &empty
	default:
		text := fmt.Sprintf("%v", v)
		answer.AnswerText = &text
	}
}

// groupSections partitions order-sorted questions into sections, preserving
// the order in which section labels first appear.
func groupSections(questions []domain.Question) []Section {
	sections := make([]Section, 0)
	index := make(map[string]int)
	for _, q := range questions {
		i, ok := index[q.SectionName]
		if !ok {
			i = len(sections)
			index[q.SectionName] = i
			sections = append(sections, Section{Name: q.SectionName, Questions: []domain.Question{}})
		}
		sections[i].Questions = append(sections[i].Questions, q)
	}
	return sections
}
