package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
)

// Store is an in-memory implementation of every repository the services need.
// It backs tests and the store=memory run mode; state is lost on restart.
type Store struct {
	mu sync.RWMutex

	templates map[int64]*domain.SurveyTemplate
	questions map[int64]*domain.Question
	responses map[int64]*domain.SurveyResponse
	answers   map[int64]*domain.QuestionAnswer
	accounts  map[int64]*domain.Account

	// answerByPair indexes answers by (response, question) so upserts
	// replace in place under the write lock.
	answerByPair map[[2]int64]int64

	nextTemplateID int64
	nextQuestionID int64
	nextResponseID int64
	nextAnswerID   int64
	nextAccountID  int64
}

func NewStore() *Store {
	return &Store{
		templates:    make(map[int64]*domain.SurveyTemplate),
		questions:    make(map[int64]*domain.Question),
		responses:    make(map[int64]*domain.SurveyResponse),
		answers:      make(map[int64]*domain.QuestionAnswer),
		accounts:     make(map[int64]*domain.Account),
		answerByPair: make(map[[2]int64]int64),
	}
}

var (
	_ app.TemplateRepository = (*Store)(nil)
	_ app.ResponseRepository = (*Store)(nil)
	_ app.AnswerRepository   = (*Store)(nil)
	_ app.AccountRepository  = (*Store)(nil)
)

func (s *Store) ActiveTemplate(_ context.Context) (*domain.SurveyTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.IsActive {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

func (s *Store) CreateTemplate(_ context.Context, template *domain.SurveyTemplate, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Single active template invariant: activating a new one retires the rest.
	if template.IsActive {
		for _, t := range s.templates {
			t.IsActive = false
		}
	}

	s.nextTemplateID++
	template.ID = s.nextTemplateID
	clone := *template
	s.templates[template.ID] = &clone

	for i := range questions {
		s.nextQuestionID++
		questions[i].ID = s.nextQuestionID
		questions[i].SurveyTemplateID = template.ID
		q := questions[i]
		s.questions[q.ID] = &q
	}
	return nil
}

func (s *Store) QuestionsByTemplate(_ context.Context, templateID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.SurveyTemplateID == templateID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *Store) Question(_ context.Context, id int64) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	clone := *q
	return &clone, nil
}

func (s *Store) QuestionByTextLike(_ context.Context, fragment string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *domain.Question
	for _, q := range s.questions {
		if !strings.Contains(q.QuestionText, fragment) {
			continue
		}
		if match == nil || q.ID < match.ID {
			match = q
		}
	}
	if match == nil {
		return nil, nil
	}
	clone := *match
	return &clone, nil
}

func (s *Store) CreateResponse(_ context.Context, response *domain.SurveyResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextResponseID++
	response.ID = s.nextResponseID
	clone := *response
	s.responses[response.ID] = &clone
	return nil
}

func (s *Store) Response(_ context.Context, id int64) (*domain.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, domain.ErrResponseNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *Store) CompleteResponse(_ context.Context, id int64, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[id]
	if !ok {
		return domain.ErrResponseNotFound
	}
	r.Status = domain.StatusCompleted
	r.CompletedAt = &completedAt
	return nil
}

func (s *Store) ListResponses(_ context.Context, filter app.ResponseFilter) ([]domain.SurveyResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SurveyResponse, 0)
	for _, r := range s.responses {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Area != "" && r.EmployeeArea != filter.Area {
			continue
		}
		if filter.CompletedFrom != nil && (r.CompletedAt == nil || r.CompletedAt.Before(*filter.CompletedFrom)) {
			continue
		}
		if filter.CompletedTo != nil && (r.CompletedAt == nil || r.CompletedAt.After(*filter.CompletedTo)) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountResponses(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, completed := 0, 0
	for _, r := range s.responses {
		total++
		if r.Status == domain.StatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

func (s *Store) UpsertAnswer(_ context.Context, answer *domain.QuestionAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair := [2]int64{answer.SurveyResponseID, answer.QuestionID}
	if id, ok := s.answerByPair[pair]; ok {
		answer.ID = id
	} else {
		s.nextAnswerID++
		answer.ID = s.nextAnswerID
		s.answerByPair[pair] = answer.ID
	}
	clone := *answer
	s.answers[answer.ID] = &clone
	return nil
}

func (s *Store) AnswersByQuestion(_ context.Context, questionID int64) ([]domain.QuestionAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.QuestionAnswer, 0)
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) AnswerFor(_ context.Context, responseID, questionID int64) (*domain.QuestionAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.answerByPair[[2]int64{responseID, questionID}]
	if !ok {
		return nil, nil
	}
	clone := *s.answers[id]
	return &clone, nil
}

func (s *Store) AccountByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *Store) CreateAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++
	account.ID = s.nextAccountID
	clone := *account
	s.accounts[account.ID] = &clone
	return nil
}
