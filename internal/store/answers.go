package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thesisflow/backend/internal/models"
)

const answerColumns = `id, question_id, user_id, answer, status, created_at, updated_at`

func scanAnswer(row pgx.Row) (*models.QuestionAnswer, error) {
	var a models.QuestionAnswer
	err := row.Scan(&a.ID, &a.QuestionID, &a.UserID, &a.Answer, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAnswers returns the user's answers across all of a project's questions.
func (s *PostgresStore) ListAnswers(ctx context.Context, userID, projectID string) ([]models.QuestionAnswer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.question_id, a.user_id, a.answer, a.status, a.created_at, a.updated_at
		 FROM question_answers a
		 JOIN research_questions q ON q.id = a.question_id
		 JOIN projects p ON p.id = q.project_id
		 WHERE q.project_id = $1 AND p.user_id = $2 AND a.user_id = $2
		 ORDER BY q.position ASC`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []models.QuestionAnswer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

// UpsertAnswer writes the user's answer to a question, updating the existing
// row when one exists for the (question, user) pair.
func (s *PostgresStore) UpsertAnswer(ctx context.Context, userID, questionID, answer string) (*models.QuestionAnswer, error) {
	var owned bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM research_questions q
			JOIN projects p ON p.id = q.project_id
			WHERE q.id = $1 AND p.user_id = $2
		)`, questionID, userID).Scan(&owned)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("question not found")
	}

	a, err := scanAnswer(s.pool.QueryRow(ctx,
		`INSERT INTO question_answers (question_id, user_id, answer, status)
		 VALUES ($1, $2, $3, 'saved')
		 ON CONFLICT (question_id, user_id) DO UPDATE
			SET answer = EXCLUDED.answer, status = 'saved', updated_at = NOW()
		 RETURNING `+answerColumns,
		questionID, userID, answer,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return a, nil
}
