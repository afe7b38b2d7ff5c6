package thesis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thesisflow/backend/internal/llm"
	"github.com/thesisflow/backend/internal/models"
)

const (
	defaultNumQuestions = 8
	minNumQuestions     = 1
	maxNumQuestions     = 15
	defaultLanguage     = "es"
)

// effectiveCount returns the question count to use: a numeric value inside
// [1,15] is honored, anything else falls back to the default of 8.
func effectiveCount(n models.LooseNumber) int {
	if n.OK && n.Value >= minNumQuestions && n.Value <= maxNumQuestions {
		return int(n.Value)
	}
	return defaultNumQuestions
}

// Generate runs one generation: resolve the topic, call the model, validate
// and normalize the completion, then replace the project's question set in
// one transaction. Every failure returns immediately; no step retries.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	if !h.openaiConfigured {
		jsonError(w, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		req.ProjectID = id
	}
	if req.ProjectID == "" {
		jsonError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	project, err := h.projects.GetProject(r.Context(), userID, req.ProjectID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = strings.TrimSpace(project.Topic)
	}
	if topic == "" {
		jsonError(w, http.StatusBadRequest, "Topic is empty")
		return
	}

	numQuestions := effectiveCount(req.NumQuestions)
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = h.defaultModel
	}

	// Two concurrent runs for the same project would race on the
	// replacement, so the generation is single-flight per project.
	acquired, err := h.locks.Acquire(r.Context(), req.ProjectID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "Failed to acquire generation lock")
		return
	}
	if !acquired {
		jsonError(w, http.StatusConflict, "Generation already in progress for this project")
		return
	}
	// Release on a context that survives a client abort, so a canceled run
	// frees the lock immediately instead of holding it for the full TTL.
	defer h.locks.Release(context.WithoutCancel(r.Context()), req.ProjectID)

	content, err := h.generator.Generate(r.Context(), llm.Params{
		Model:        model,
		Topic:        topic,
		Language:     language,
		NumQuestions: numQuestions,
	})
	if err != nil {
		var provErr *llm.ProviderError
		switch {
		case errors.As(err, &provErr):
			log.Printf("openai error: %v", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":  "OpenAI request failed",
				"detail": provErr.Detail,
			})
		case errors.Is(err, llm.ErrEmptyCompletion):
			jsonError(w, http.StatusBadGateway, "OpenAI returned empty content")
		default:
			jsonError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	payload, err := llm.ParsePayload(content)
	if err != nil {
		var parseErr *llm.ParseError
		var schemaErr *llm.SchemaError
		switch {
		case errors.As(err, &parseErr):
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": "Failed to parse JSON from model",
				"raw":   parseErr.Raw,
			})
		case errors.As(err, &schemaErr):
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": "Invalid JSON schema from model",
				"raw":   schemaErr.Raw,
			})
		default:
			jsonError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	normalized := llm.Normalize(payload, numQuestions)
	if len(normalized) == 0 {
		jsonError(w, http.StatusBadGateway, "Model returned no usable questions")
		return
	}

	inserted, err := h.questions.ReplaceQuestions(r.Context(), userID, req.ProjectID, normalized)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": inserted})
}
