package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore handles all relational CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they don't exist.
//
// research_questions carries no unique constraint on (project_id, position):
// generation runs renumber 1..N on insert, but user-added questions may
// drift out of strict contiguity over time and that is accepted.
// Answers cascade when their question is deleted; questions do NOT cascade
// when a project is deleted, so project deletion must remove questions
// explicitly first (see DeleteProject).
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  UNIQUE NOT NULL,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS projects (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id    UUID NOT NULL REFERENCES users(id),
			topic      TEXT NOT NULL,
			title      TEXT,
			status     TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS research_questions (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES projects(id),
			position   INT  NOT NULL,
			question   TEXT NOT NULL,
			rationale  TEXT,
			keywords   TEXT[],
			status     TEXT NOT NULL DEFAULT 'draft',
			source     TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_research_questions_project
			ON research_questions (project_id, position);

		CREATE TABLE IF NOT EXISTS question_answers (
			id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			question_id UUID NOT NULL REFERENCES research_questions(id) ON DELETE CASCADE,
			user_id     UUID NOT NULL REFERENCES users(id),
			answer      TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'saved',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (question_id, user_id)
		)
	`)
	return err
}
