package thesis

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thesisflow/backend/internal/llm"
	"github.com/thesisflow/backend/internal/models"
)

const testUserID = "8a2b2a58-0b43-4f5e-9a67-111111111111"

// fakeStore is an in-memory stand-in for the PostgreSQL store, mirroring
// its owner scoping, position ordering, and answer upsert semantics.
type fakeStore struct {
	projects  map[string]*models.Project
	questions map[string]*models.ResearchQuestion
	answers   map[string]*models.QuestionAnswer // keyed question_id|user_id

	replaceCalls int
	replaceErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:  map[string]*models.Project{},
		questions: map[string]*models.ResearchQuestion{},
		answers:   map[string]*models.QuestionAnswer{},
	}
}

func (f *fakeStore) addProject(topic string) *models.Project {
	p := &models.Project{
		ID:        uuid.New().String(),
		UserID:    testUserID,
		Topic:     topic,
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.projects[p.ID] = p
	return p
}

func (f *fakeStore) CreateProject(_ context.Context, userID, topic string, title *string) (*models.Project, error) {
	p := f.addProject(topic)
	p.UserID = userID
	p.Title = title
	return p, nil
}

func (f *fakeStore) ListProjects(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetProject(_ context.Context, userID, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("project not found")
	}
	return p, nil
}

func (f *fakeStore) UpdateProject(_ context.Context, userID, id string, upd models.UpdateProjectRequest) (*models.Project, error) {
	p, err := f.GetProject(nil, userID, id)
	if err != nil {
		return nil, err
	}
	if upd.Topic != nil {
		p.Topic = *upd.Topic
	}
	if upd.Title != nil {
		p.Title = upd.Title
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	return p, nil
}

func (f *fakeStore) DeleteProject(_ context.Context, userID, id string) error {
	if _, err := f.GetProject(nil, userID, id); err != nil {
		return err
	}
	for qid, q := range f.questions {
		if q.ProjectID == id {
			delete(f.questions, qid)
		}
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeStore) ListQuestions(_ context.Context, userID, projectID string) ([]models.ResearchQuestion, error) {
	if _, err := f.GetProject(nil, userID, projectID); err != nil {
		return nil, err
	}
	var out []models.ResearchQuestion
	for _, q := range f.questions {
		if q.ProjectID == projectID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) CreateQuestion(_ context.Context, userID, projectID string, req models.CreateQuestionRequest) (*models.ResearchQuestion, error) {
	if _, err := f.GetProject(nil, userID, projectID); err != nil {
		return nil, err
	}
	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		for _, q := range f.questions {
			if q.ProjectID == projectID && q.Position > position {
				position = q.Position
			}
		}
		position++
	}
	q := &models.ResearchQuestion{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Position:  position,
		Question:  req.Question,
		Rationale: req.Rationale,
		Status:    "draft",
		Source:    "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.questions[q.ID] = q
	return q, nil
}

func (f *fakeStore) UpdateQuestion(_ context.Context, _, questionID string, upd models.UpdateQuestionRequest) (*models.ResearchQuestion, error) {
	q, ok := f.questions[questionID]
	if !ok {
		return nil, fmt.Errorf("question not found")
	}
	if upd.Question != nil {
		q.Question = *upd.Question
	}
	if upd.Rationale != nil {
		q.Rationale = upd.Rationale
	}
	if upd.Status != nil {
		q.Status = *upd.Status
	}
	return q, nil
}

func (f *fakeStore) DeleteQuestion(_ context.Context, _, questionID string) error {
	if _, ok := f.questions[questionID]; !ok {
		return fmt.Errorf("question not found")
	}
	delete(f.questions, questionID)
	return nil
}

func (f *fakeStore) ReplaceQuestions(_ context.Context, userID, projectID string, questions []models.GeneratedQuestion) ([]models.ResearchQuestion, error) {
	f.replaceCalls++
	if f.replaceErr != nil {
		return nil, f.replaceErr
	}
	if _, err := f.GetProject(nil, userID, projectID); err != nil {
		return nil, err
	}
	for qid, q := range f.questions {
		if q.ProjectID == projectID {
			delete(f.questions, qid)
		}
	}
	inserted := make([]models.ResearchQuestion, 0, len(questions))
	for _, gq := range questions {
		q := &models.ResearchQuestion{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Position:  gq.Position,
			Question:  gq.Question,
			Rationale: gq.Rationale,
			Keywords:  gq.Keywords,
			Status:    "draft",
			Source:    "ai",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		f.questions[q.ID] = q
		inserted = append(inserted, *q)
	}
	return inserted, nil
}

func (f *fakeStore) ListAnswers(_ context.Context, userID, projectID string) ([]models.QuestionAnswer, error) {
	var out []models.QuestionAnswer
	for _, a := range f.answers {
		q, ok := f.questions[a.QuestionID]
		if ok && q.ProjectID == projectID && a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertAnswer(_ context.Context, userID, questionID, answer string) (*models.QuestionAnswer, error) {
	if _, ok := f.questions[questionID]; !ok {
		return nil, fmt.Errorf("question not found")
	}
	key := questionID + "|" + userID
	if existing, ok := f.answers[key]; ok {
		existing.Answer = answer
		existing.Status = "saved"
		existing.UpdatedAt = time.Now()
		return existing, nil
	}
	a := &models.QuestionAnswer{
		ID:         uuid.New().String(),
		QuestionID: questionID,
		UserID:     userID,
		Answer:     answer,
		Status:     "saved",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.answers[key] = a
	return a, nil
}

// fakeGenerator returns a canned completion and captures the params the
// handler resolved.
type fakeGenerator struct {
	content  string
	err      error
	captured []llm.Params
}

func (g *fakeGenerator) Generate(_ context.Context, p llm.Params) (string, error) {
	g.captured = append(g.captured, p)
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

// fakeLocker grants or refuses every acquire and records the state of the
// context each release arrives on.
type fakeLocker struct {
	busy           bool
	acquired       int
	released       int
	releaseCtxErrs []error
}

func (l *fakeLocker) Acquire(context.Context, string) (bool, error) {
	if l.busy {
		return false, nil
	}
	l.acquired++
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, _ string) {
	l.released++
	l.releaseCtxErrs = append(l.releaseCtxErrs, ctx.Err())
}

// authed stamps the test user onto the request context the way the auth
// middleware does.
func authed(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", testUserID))
}
