package thesis

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thesisflow/backend/internal/llm"
	"github.com/thesisflow/backend/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// jsonError writes a {"error": msg} body with the given status code.
func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ProjectStore defines the interface for project persistence.
type ProjectStore interface {
	CreateProject(ctx context.Context, userID, topic string, title *string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	GetProject(ctx context.Context, userID, id string) (*models.Project, error)
	UpdateProject(ctx context.Context, userID, id string, upd models.UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, userID, id string) error
}

// QuestionStore defines the interface for research question persistence.
type QuestionStore interface {
	ListQuestions(ctx context.Context, userID, projectID string) ([]models.ResearchQuestion, error)
	CreateQuestion(ctx context.Context, userID, projectID string, req models.CreateQuestionRequest) (*models.ResearchQuestion, error)
	UpdateQuestion(ctx context.Context, userID, questionID string, upd models.UpdateQuestionRequest) (*models.ResearchQuestion, error)
	DeleteQuestion(ctx context.Context, userID, questionID string) error
	ReplaceQuestions(ctx context.Context, userID, projectID string, questions []models.GeneratedQuestion) ([]models.ResearchQuestion, error)
}

// AnswerStore defines the interface for answer persistence.
type AnswerStore interface {
	ListAnswers(ctx context.Context, userID, projectID string) ([]models.QuestionAnswer, error)
	UpsertAnswer(ctx context.Context, userID, questionID, answer string) (*models.QuestionAnswer, error)
}

// Generator produces a raw model completion for a question-generation call.
type Generator interface {
	Generate(ctx context.Context, p llm.Params) (string, error)
}

// Locker provides per-project mutual exclusion for generation runs.
type Locker interface {
	Acquire(ctx context.Context, projectID string) (bool, error)
	Release(ctx context.Context, projectID string)
}

// Handler holds thesis project HTTP handlers.
type Handler struct {
	projects  ProjectStore
	questions QuestionStore
	answers   AnswerStore
	generator Generator
	locks     Locker

	defaultModel     string
	openaiConfigured bool
}

func NewHandler(projects ProjectStore, questions QuestionStore, answers AnswerStore, generator Generator, locks Locker, defaultModel string, openaiConfigured bool) *Handler {
	if defaultModel == "" {
		defaultModel = llm.DefaultModel
	}
	return &Handler{
		projects:         projects,
		questions:        questions,
		answers:          answers,
		generator:        generator,
		locks:            locks,
		defaultModel:     defaultModel,
		openaiConfigured: openaiConfigured,
	}
}

func userIDFrom(r *http.Request) string {
	return r.Context().Value("user_id").(string)
}
