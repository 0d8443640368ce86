package domain

import (
	"encoding/json"
	"time"
)

// AnonymousName is the display name substituted for anonymous respondents.
const AnonymousName = "Anónimo"

// ResponseStatus tracks the lifecycle of a survey response session.
type ResponseStatus string

const (
	StatusInProgress ResponseStatus = "in_progress"
	StatusCompleted  ResponseStatus = "completed"
	// StatusAbandoned is reserved; no operation currently transitions to it.
	StatusAbandoned ResponseStatus = "abandoned"
)

// QuestionType tags how a question is rendered and answered.
type QuestionType string

const (
	QuestionText     QuestionType = "text"     // short free text
	QuestionTextarea QuestionType = "textarea" // long free text
	QuestionSelect   QuestionType = "select"   // single select from a dropdown
	QuestionRadio    QuestionType = "radio"    // single select from radio options
	QuestionCheckbox QuestionType = "checkbox" // multi select
	QuestionScale    QuestionType = "scale"    // numeric scale
)

// Account is a dashboard login identity. One administrator account is seeded
// at startup if none exists.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// SurveyTemplate is a named, versioned questionnaire. Exactly one template is
// active at a time; the service lazily seeds a default when none exists.
type SurveyTemplate struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

// Question belongs to one template. order_index is unique within the template
// and defines both section and global presentation order.
type Question struct {
	ID               int64           `json:"id"`
	SurveyTemplateID int64           `json:"-"`
	SectionName      string          `json:"section_name"`
	QuestionText     string          `json:"question_text"`
	QuestionType     QuestionType    `json:"question_type"`
	Options          []string        `json:"options"`
	IsRequired       bool            `json:"is_required"`
	OrderIndex       int             `json:"order_index"`
	ValidationRules  json.RawMessage `json:"validation_rules"`
	CreatedAt        time.Time       `json:"-"`
}

// SurveyResponse is one respondent's pass through the questionnaire.
type SurveyResponse struct {
	ID               int64          `json:"id"`
	SurveyTemplateID int64          `json:"-"`
	EmployeeName     string         `json:"-"`
	EmployeeArea     string         `json:"employee_area"`
	WorkExperience   string         `json:"work_experience"`
	IsAnonymous      bool           `json:"is_anonymous"`
	IPAddress        string         `json:"-"`
	UserAgent        string         `json:"-"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at"`
	Status           ResponseStatus `json:"status"`
}

// DisplayName is the only sanctioned way to expose a respondent's name.
// Anonymous sessions (and sessions that never gave a name) render as Anónimo.
func (r *SurveyResponse) DisplayName() string {
	if r.IsAnonymous || r.EmployeeName == "" {
		return AnonymousName
	}
	return r.EmployeeName
}

// QuestionAnswer holds exactly one populated value slot per (response,
// question) pair; re-submission overwrites the pair's row entirely.
type QuestionAnswer struct {
	ID               int64           `json:"id"`
	SurveyResponseID int64           `json:"-"`
	QuestionID       int64           `json:"question_id"`
	AnswerText       *string         `json:"answer_text"`
	AnswerNumeric    *float64        `json:"answer_numeric"`
	AnswerJSON       json.RawMessage `json:"answer_json"`
	AnsweredAt       time.Time       `json:"answered_at"`
}

// Text returns the text slot or "" when the slot is empty.
func (a *QuestionAnswer) Text() string {
	if a.AnswerText == nil {
		return ""
	}
	return *a.AnswerText
}
