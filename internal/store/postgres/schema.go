package postgres

import (
	"context"
	"fmt"
)

var schema = []string{ //nolint:gochecknoglobals // DDL
	`CREATE TABLE IF NOT EXISTS tasks (
    id              UUID PRIMARY KEY,
    case_id         UUID NOT NULL,
    parent_id       UUID UNIQUE,
    type            TEXT NOT NULL,
    status          TEXT NOT NULL,
    assigned_to     UUID NOT NULL,
    assigned_by     UUID NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    acknowledged_at TIMESTAMPTZ,
    started_at      TIMESTAMPTZ,
    completed_at    TIMESTAMPTZ,
    deadline        TIMESTAMPTZ,
    payload         JSONB NOT NULL DEFAULT '{}'
)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_case ON tasks (case_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee_status ON tasks (assigned_to, status)`,

	`CREATE TABLE IF NOT EXISTS case_role_assignments (
    case_id     UUID NOT NULL,
    role        TEXT NOT NULL,
    user_id     UUID NOT NULL,
    assigned_by UUID NOT NULL,
    assigned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (case_id, role)
)`,

	`CREATE TABLE IF NOT EXISTS activity_log (
    id         UUID PRIMARY KEY,
    case_id    UUID NOT NULL,
    task_id    UUID,
    actor_id   UUID NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_case ON activity_log (case_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS user_messenger_links (
    id          UUID PRIMARY KEY,
    user_id     UUID NOT NULL,
    platform    TEXT NOT NULL,
    external_id TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, platform)
)`,
}

// EnsureSchema creates the tables and indexes if they don't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres.Store.EnsureSchema: %w", err)
		}
	}
	return nil
}
