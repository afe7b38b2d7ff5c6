package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thesisflow/backend/internal/models"
)

const questionColumns = `id, project_id, position, question, rationale, keywords, status, source, created_at, updated_at`

const questionColumnsQ = `q.id, q.project_id, q.position, q.question, q.rationale, q.keywords, q.status, q.source, q.created_at, q.updated_at`

func scanQuestion(row pgx.Row) (*models.ResearchQuestion, error) {
	var q models.ResearchQuestion
	err := row.Scan(&q.ID, &q.ProjectID, &q.Position, &q.Question, &q.Rationale,
		&q.Keywords, &q.Status, &q.Source, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns a project's questions ordered by position ascending.
func (s *PostgresStore) ListQuestions(ctx context.Context, userID, projectID string) ([]models.ResearchQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumnsQ+`
		 FROM research_questions q
		 JOIN projects p ON p.id = q.project_id
		 WHERE q.project_id = $1 AND p.user_id = $2
		 ORDER BY q.position ASC`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.ResearchQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// CreateQuestion inserts a user-authored question. When position is nil the
// question goes after the project's current last position. Gaps left by
// later deletions are accepted.
func (s *PostgresStore) CreateQuestion(ctx context.Context, userID, projectID string, req models.CreateQuestionRequest) (*models.ResearchQuestion, error) {
	if _, err := s.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		err := s.pool.QueryRow(ctx,
			`SELECT COALESCE(MAX(position), 0) + 1 FROM research_questions WHERE project_id = $1`,
			projectID).Scan(&position)
		if err != nil {
			return nil, fmt.Errorf("next position: %w", err)
		}
	}

	q, err := scanQuestion(s.pool.QueryRow(ctx,
		`INSERT INTO research_questions (project_id, position, question, rationale, source)
		 VALUES ($1, $2, $3, $4, 'user')
		 RETURNING `+questionColumns,
		projectID, position, req.Question, req.Rationale,
	))
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// UpdateQuestion applies the non-nil fields of upd and bumps updated_at.
func (s *PostgresStore) UpdateQuestion(ctx context.Context, userID, questionID string, upd models.UpdateQuestionRequest) (*models.ResearchQuestion, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx,
		`UPDATE research_questions q SET
			question   = COALESCE($3, q.question),
			rationale  = COALESCE($4, q.rationale),
			status     = COALESCE($5, q.status),
			updated_at = NOW()
		 FROM projects p
		 WHERE q.id = $1 AND p.id = q.project_id AND p.user_id = $2
		 RETURNING `+questionColumnsQ,
		questionID, userID, upd.Question, upd.Rationale, upd.Status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("question not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, userID, questionID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM research_questions q
		 USING projects p
		 WHERE q.id = $1 AND p.id = q.project_id AND p.user_id = $2`,
		questionID, userID)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question not found")
	}
	return nil
}

// ReplaceQuestions swaps a project's entire question set for the given
// generated one inside a single transaction, so readers never observe the
// project questionless between the delete and the insert. Inserted rows are
// tagged source 'ai', status 'draft' and returned ordered by position.
func (s *PostgresStore) ReplaceQuestions(ctx context.Context, userID, projectID string, questions []models.GeneratedQuestion) ([]models.ResearchQuestion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var owned bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND user_id = $2)`,
		projectID, userID).Scan(&owned)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("project not found")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM research_questions WHERE project_id = $1`, projectID); err != nil {
		return nil, fmt.Errorf("delete questions: %w", err)
	}

	inserted := make([]models.ResearchQuestion, 0, len(questions))
	for _, gq := range questions {
		q, err := scanQuestion(tx.QueryRow(ctx,
			`INSERT INTO research_questions (project_id, position, question, rationale, keywords, source, status)
			 VALUES ($1, $2, $3, $4, $5, 'ai', 'draft')
			 RETURNING `+questionColumns,
			projectID, gq.Position, gq.Question, gq.Rationale, gq.Keywords,
		))
		if err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		inserted = append(inserted, *q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}
