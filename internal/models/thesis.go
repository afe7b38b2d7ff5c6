package models

import (
	"encoding/json"
	"time"
)

// Project is a user's thesis topic container, stored in PostgreSQL.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Topic     string    `json:"topic"`
	Title     *string   `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResearchQuestion is one investigable question tied to a project.
// Position is 1-based and defines display/answer order.
type ResearchQuestion struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Position  int       `json:"position"`
	Question  string    `json:"question"`
	Rationale *string   `json:"rationale"`
	Keywords  []string  `json:"keywords"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuestionAnswer is a user's answer to a research question.
// At most one row exists per (question, user) pair.
type QuestionAnswer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	UserID     string    `json:"user_id"`
	Answer     string    `json:"answer"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GeneratedQuestion is a normalized question produced by a generation run,
// ready for insertion.
type GeneratedQuestion struct {
	Position  int
	Question  string
	Rationale *string
	Keywords  []string
}

// CreateProjectRequest is the JSON body for POST /api/projects.
type CreateProjectRequest struct {
	Topic string  `json:"topic"`
	Title *string `json:"title"`
}

// UpdateProjectRequest is the JSON body for PUT /api/projects/{id}.
// Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Topic  *string `json:"topic"`
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// CreateQuestionRequest is the JSON body for POST /api/projects/{id}/questions.
type CreateQuestionRequest struct {
	Question  string  `json:"question"`
	Rationale *string `json:"rationale"`
	Position  *int    `json:"position"`
}

// UpdateQuestionRequest is the JSON body for PUT /api/questions/{id}.
type UpdateQuestionRequest struct {
	Question  *string `json:"question"`
	Rationale *string `json:"rationale"`
	Status    *string `json:"status"`
}

// UpsertAnswerRequest is the JSON body for PUT /api/questions/{id}/answer.
type UpsertAnswerRequest struct {
	Answer string `json:"answer"`
}

// GenerateRequest is the JSON body for the question generation endpoint.
type GenerateRequest struct {
	ProjectID    string      `json:"projectId"`
	Topic        string      `json:"topic"`
	NumQuestions LooseNumber `json:"numQuestions"`
	Language     string      `json:"language"`
	Model        string      `json:"model"`
}

// LooseNumber decodes a JSON value that should be a number but may be
// anything. Non-numeric values are tolerated and leave OK false so the
// caller can fall back to a default instead of rejecting the whole body.
type LooseNumber struct {
	Value float64
	OK    bool
}

func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	n.Value = f
	n.OK = true
	return nil
}
