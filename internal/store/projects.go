package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thesisflow/backend/internal/models"
)

const projectColumns = `id, user_id, topic, title, status, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.UserID, &p.Topic, &p.Title, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, userID, topic string, title *string) (*models.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx,
		`INSERT INTO projects (user_id, topic, title)
		 VALUES ($1, $2, $3)
		 RETURNING `+projectColumns,
		userID, topic, title,
	))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// ListProjects returns the user's projects, newest first.
func (s *PostgresStore) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) GetProject(ctx context.Context, userID, id string) (*models.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject applies the non-nil fields of upd and bumps updated_at.
func (s *PostgresStore) UpdateProject(ctx context.Context, userID, id string, upd models.UpdateProjectRequest) (*models.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx,
		`UPDATE projects SET
			topic      = COALESCE($3, topic),
			title      = COALESCE($4, title),
			status     = COALESCE($5, status),
			updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+projectColumns,
		id, userID, upd.Topic, upd.Title, upd.Status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project and its questions in one transaction.
// Questions are deleted before the project; the schema does not cascade
// them, and the ordering keeps referential integrity if the transaction
// is ever split. Answers cascade from their questions.
func (s *PostgresStore) DeleteProject(ctx context.Context, userID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM research_questions
		 WHERE project_id = $1
		   AND project_id IN (SELECT id FROM projects WHERE id = $1 AND user_id = $2)`,
		id, userID); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project not found")
	}

	return tx.Commit(ctx)
}
