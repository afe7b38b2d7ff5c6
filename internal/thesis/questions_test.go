package thesis

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/thesisflow/backend/internal/models"
)

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/api/projects/{id}/questions", h.ListQuestions)
	r.Post("/api/projects/{id}/questions", h.CreateQuestion)
	r.Get("/api/projects/{id}/answers", h.ListAnswers)
	r.Put("/api/questions/{id}", h.UpdateQuestion)
	r.Delete("/api/questions/{id}", h.DeleteQuestion)
	r.Put("/api/questions/{id}/answer", h.UpsertAnswer)
	return r
}

func doRequest(r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := authed(httptest.NewRequest(method, path, strings.NewReader(body)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQuestions_RoundTripOrderedByPosition(t *testing.T) {
	store := newFakeStore()
	project := store.addProject("Tema")
	h := newTestHandler(store, &fakeGenerator{}, &fakeLocker{})
	r := newTestRouter(h)

	// Insert out of order with explicit positions.
	for _, q := range []struct {
		text     string
		position int
	}{
		{"tercera", 3},
		{"primera", 1},
		{"segunda", 2},
	} {
		body := fmt.Sprintf(`{"question":%q,"position":%d}`, q.text, q.position)
		w := doRequest(r, http.MethodPost, "/api/projects/"+project.ID+"/questions", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/projects/"+project.ID+"/questions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var questions []models.ResearchQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &questions))
	require.Len(t, questions, 3)
	require.Equal(t, "primera", questions[0].Question)
	require.Equal(t, "segunda", questions[1].Question)
	require.Equal(t, "tercera", questions[2].Question)
}

func TestQuestions_AppendWithoutPosition(t *testing.T) {
	store := newFakeStore()
	project := store.addProject("Tema")
	h := newTestHandler(store, &fakeGenerator{}, &fakeLocker{})
	r := newTestRouter(h)

	w := doRequest(r, http.MethodPost, "/api/projects/"+project.ID+"/questions",
		`{"question":"primera"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(r, http.MethodPost, "/api/projects/"+project.ID+"/questions",
		`{"question":"segunda"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var q models.ResearchQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	require.Equal(t, 2, q.Position)
	require.Equal(t, "user", q.Source)
}

func TestAnswers_UpsertTwiceKeepsSingleRow(t *testing.T) {
	store := newFakeStore()
	project := store.addProject("Tema")
	question, err := store.CreateQuestion(nil, testUserID, project.ID, models.CreateQuestionRequest{Question: "¿Por qué?"})
	require.NoError(t, err)

	h := newTestHandler(store, &fakeGenerator{}, &fakeLocker{})
	r := newTestRouter(h)

	w := doRequest(r, http.MethodPut, "/api/questions/"+question.ID+"/answer",
		`{"answer":"primer borrador"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var first models.QuestionAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doRequest(r, http.MethodPut, "/api/questions/"+question.ID+"/answer",
		`{"answer":"versión final"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var second models.QuestionAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	require.Equal(t, first.ID, second.ID, "second write must update, not duplicate")
	require.Equal(t, "versión final", second.Answer)

	w = doRequest(r, http.MethodGet, "/api/projects/"+project.ID+"/answers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var answers []models.QuestionAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answers))
	require.Len(t, answers, 1)
	require.Equal(t, "versión final", answers[0].Answer)
}

func TestAnswers_UnknownQuestion(t *testing.T) {
	h := newTestHandler(newFakeStore(), &fakeGenerator{}, &fakeLocker{})
	r := newTestRouter(h)

	w := doRequest(r, http.MethodPut, "/api/questions/nope/answer", `{"answer":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestions_UpdateAndDelete(t *testing.T) {
	store := newFakeStore()
	project := store.addProject("Tema")
	question, err := store.CreateQuestion(nil, testUserID, project.ID, models.CreateQuestionRequest{Question: "borrador"})
	require.NoError(t, err)

	h := newTestHandler(store, &fakeGenerator{}, &fakeLocker{})
	r := newTestRouter(h)

	w := doRequest(r, http.MethodPut, "/api/questions/"+question.ID,
		`{"question":"pulida","status":"saved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.ResearchQuestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "pulida", updated.Question)
	require.Equal(t, "saved", updated.Status)

	w = doRequest(r, http.MethodDelete, "/api/questions/"+question.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	questions, err := store.ListQuestions(nil, testUserID, project.ID)
	require.NoError(t, err)
	require.Empty(t, questions)
}
