package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
)

// Store is the Postgres implementation of every repository the services need.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ app.TemplateRepository = (*Store)(nil)
	_ app.ResponseRepository = (*Store)(nil)
	_ app.AnswerRepository   = (*Store)(nil)
	_ app.AccountRepository  = (*Store)(nil)
)

func (s *Store) ActiveTemplate(ctx context.Context) (*domain.SurveyTemplate, error) {
	t := &domain.SurveyTemplate{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, description, version, is_active, created_by, created_at, updated_at
		FROM survey_templates WHERE is_active ORDER BY id LIMIT 1`,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Version, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("active template: %w", err)
	}
	return t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, template *domain.SurveyTemplate, questions []domain.Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if template.IsActive {
		if _, err := tx.Exec(ctx, `UPDATE survey_templates SET is_active = FALSE WHERE is_active`); err != nil {
			return fmt.Errorf("retire templates: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO survey_templates (title, description, version, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		template.Title, template.Description, template.Version, template.IsActive, template.CreatedBy, template.CreatedAt,
	).Scan(&template.ID)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	for i := range questions {
		q := &questions[i]
		q.SurveyTemplateID = template.ID

		options, err := marshalOrNull(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO questions (survey_template_id, section_name, question_text, question_type,
				options, is_required, order_index, validation_rules, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			q.SurveyTemplateID, q.SectionName, q.QuestionText, q.QuestionType,
			options, q.IsRequired, q.OrderIndex, rawOrNull(q.ValidationRules), template.CreatedAt,
		).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.OrderIndex, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) QuestionsByTemplate(ctx context.Context, templateID int64) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, survey_template_id, section_name, question_text, question_type,
			options, is_required, order_index, validation_rules, created_at
		FROM questions WHERE survey_template_id = $1 ORDER BY order_index`,
		templateID)
	if err != nil {
		return nil, fmt.Errorf("questions by template: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *Store) Question(ctx context.Context, id int64) (*domain.Question, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, survey_template_id, section_name, question_text, question_type,
			options, is_required, order_index, validation_rules, created_at
		FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *Store) QuestionByTextLike(ctx context.Context, fragment string) (*domain.Question, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, survey_template_id, section_name, question_text, question_type,
			options, is_required, order_index, validation_rules, created_at
		FROM questions WHERE question_text LIKE $1 ORDER BY id LIMIT 1`,
		"%"+fragment+"%")
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	q := &domain.Question{}
	var options, rules []byte
	err := row.Scan(&q.ID, &q.SurveyTemplateID, &q.SectionName, &q.QuestionText, &q.QuestionType,
		&options, &q.IsRequired, &q.OrderIndex, &rules, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	if len(rules) > 0 {
		q.ValidationRules = json.RawMessage(rules)
	}
	return q, nil
}

func (s *Store) CreateResponse(ctx context.Context, response *domain.SurveyResponse) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO survey_responses (survey_template_id, employee_name, employee_area, work_experience,
			is_anonymous, ip_address, user_agent, started_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		response.SurveyTemplateID, response.EmployeeName, response.EmployeeArea, response.WorkExperience,
		response.IsAnonymous, response.IPAddress, response.UserAgent, response.StartedAt, response.Status,
	).Scan(&response.ID)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *Store) Response(ctx context.Context, id int64) (*domain.SurveyResponse, error) {
	r := &domain.SurveyResponse{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, survey_template_id, employee_name, employee_area, work_experience,
			is_anonymous, ip_address, user_agent, started_at, completed_at, status
		FROM survey_responses WHERE id = $1`, id,
	).Scan(&r.ID, &r.SurveyTemplateID, &r.EmployeeName, &r.EmployeeArea, &r.WorkExperience,
		&r.IsAnonymous, &r.IPAddress, &r.UserAgent, &r.StartedAt, &r.CompletedAt, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrResponseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	return r, nil
}

func (s *Store) CompleteResponse(ctx context.Context, id int64, completedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE survey_responses SET status = $1, completed_at = $2 WHERE id = $3`,
		domain.StatusCompleted, completedAt, id)
	if err != nil {
		return fmt.Errorf("complete response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResponseNotFound
	}
	return nil
}

func (s *Store) ListResponses(ctx context.Context, filter app.ResponseFilter) ([]domain.SurveyResponse, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, survey_template_id, employee_name, employee_area, work_experience,
			is_anonymous, ip_address, user_agent, started_at, completed_at, status
		FROM survey_responses WHERE 1=1`)
	args := make([]interface{}, 0, 4)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query.WriteString(" AND status = $" + strconv.Itoa(len(args)))
	}
	if filter.Area != "" {
		args = append(args, filter.Area)
		query.WriteString(" AND employee_area = $" + strconv.Itoa(len(args)))
	}
	if filter.CompletedFrom != nil {
		args = append(args, *filter.CompletedFrom)
		query.WriteString(" AND completed_at >= $" + strconv.Itoa(len(args)))
	}
	if filter.CompletedTo != nil {
		args = append(args, *filter.CompletedTo)
		query.WriteString(" AND completed_at <= $" + strconv.Itoa(len(args)))
	}
	query.WriteString(" ORDER BY id")

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SurveyResponse, 0)
	for rows.Next() {
		var r domain.SurveyResponse
		err := rows.Scan(&r.ID, &r.SurveyTemplateID, &r.EmployeeName, &r.EmployeeArea, &r.WorkExperience,
			&r.IsAnonymous, &r.IPAddress, &r.UserAgent, &r.StartedAt, &r.CompletedAt, &r.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CountResponses(ctx context.Context) (int, int, error) {
	var total, completed int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		FROM survey_responses`,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("count responses: %w", err)
	}
	return total, completed, nil
}

func (s *Store) UpsertAnswer(ctx context.Context, answer *domain.QuestionAnswer) error {
	// The unique constraint on (survey_response_id, question_id) makes the
	// overwrite atomic even under concurrent submissions.
	err := s.pool.QueryRow(ctx, `
		INSERT INTO question_answers (survey_response_id, question_id, answer_text, answer_numeric, answer_json, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (survey_response_id, question_id) DO UPDATE SET
			answer_text = EXCLUDED.answer_text,
			answer_numeric = EXCLUDED.answer_numeric,
			answer_json = EXCLUDED.answer_json,
			answered_at = EXCLUDED.answered_at
		RETURNING id`,
		answer.SurveyResponseID, answer.QuestionID, answer.AnswerText, answer.AnswerNumeric,
		rawOrNull(answer.AnswerJSON), answer.AnsweredAt,
	).Scan(&answer.ID)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

func (s *Store) AnswersByQuestion(ctx context.Context, questionID int64) ([]domain.QuestionAnswer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, survey_response_id, question_id, answer_text, answer_numeric, answer_json, answered_at
		FROM question_answers WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return nil, fmt.Errorf("answers by question: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuestionAnswer, 0)
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) AnswerFor(ctx context.Context, responseID, questionID int64) (*domain.QuestionAnswer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, survey_response_id, question_id, answer_text, answer_numeric, answer_json, answered_at
		FROM question_answers WHERE survey_response_id = $1 AND question_id = $2`,
		responseID, questionID)
	a, err := scanAnswer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func scanAnswer(row rowScanner) (*domain.QuestionAnswer, error) {
	a := &domain.QuestionAnswer{}
	var raw []byte
	err := row.Scan(&a.ID, &a.SurveyResponseID, &a.QuestionID, &a.AnswerText, &a.AnswerNumeric, &raw, &a.AnsweredAt)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		a.AnswerJSON = json.RawMessage(raw)
	}
	return a, nil
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	a := &domain.Account{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, full_name, is_active, created_at, updated_at
		FROM accounts WHERE username = $1`, username,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.FullName, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account by username: %w", err)
	}
	return a, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, password_hash, role, full_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		account.Username, account.Email, account.PasswordHash, account.Role,
		account.FullName, account.IsActive, account.CreatedAt,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func marshalOrNull(options []string) (interface{}, error) {
	if options == nil {
		return nil, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func rawOrNull(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
