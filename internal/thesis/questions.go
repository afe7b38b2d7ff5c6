package thesis

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thesisflow/backend/internal/models"
)

// ListQuestions returns a project's questions ordered by position ascending.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	questions, err := h.questions.ListQuestions(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if questions == nil {
		questions = []models.ResearchQuestion{}
	}
	writeJSON(w, http.StatusOK, questions)
}

// CreateQuestion adds a user-authored question to a project. When no
// position is given the question is appended after the current last one.
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req models.CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		jsonError(w, http.StatusBadRequest, "question is required")
		return
	}

	question, err := h.questions.CreateQuestion(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// UpdateQuestion edits a question's text, rationale, or status.
func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req models.UpdateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Question != nil && strings.TrimSpace(*req.Question) == "" {
		jsonError(w, http.StatusBadRequest, "question cannot be empty")
		return
	}

	question, err := h.questions.UpdateQuestion(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// DeleteQuestion removes a single question. Its answers cascade away with
// it; remaining questions are not renumbered.
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	if err := h.questions.DeleteQuestion(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ListAnswers returns the user's answers across a project's questions.
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	answers, err := h.answers.ListAnswers(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if answers == nil {
		answers = []models.QuestionAnswer{}
	}
	writeJSON(w, http.StatusOK, answers)
}

// UpsertAnswer writes the user's answer to a question. A second write for
// the same (question, user) pair updates the existing row.
func (h *Handler) UpsertAnswer(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req models.UpsertAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		jsonError(w, http.StatusBadRequest, "answer is required")
		return
	}

	answer, err := h.answers.UpsertAnswer(r.Context(), userID, chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
