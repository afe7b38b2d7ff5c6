package thesis

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/thesisflow/backend/internal/models"
)

// CreateProject creates a new thesis project for the current user.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		jsonError(w, http.StatusBadRequest, "topic is required")
		return
	}

	project, err := h.projects.CreateProject(r.Context(), userID, strings.TrimSpace(req.Topic), req.Title)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// ListProjects returns the current user's projects, newest first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	projects, err := h.projects.ListProjects(r.Context(), userID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "database error")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	project, err := h.projects.GetProject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject edits a project's topic, title, or status.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	var req models.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Topic != nil && strings.TrimSpace(*req.Topic) == "" {
		jsonError(w, http.StatusBadRequest, "topic cannot be empty")
		return
	}

	project, err := h.projects.UpdateProject(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project along with its questions and answers.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)

	if err := h.projects.DeleteProject(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
