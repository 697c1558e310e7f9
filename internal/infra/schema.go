package infra

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		verified_at   TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS email_verifications (
		token      UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token      UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dreams (
		id             BIGSERIAL PRIMARY KEY,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		user_id        UUID NOT NULL REFERENCES users(id),
		audio_url      TEXT NOT NULL CHECK (audio_url <> ''),
		transcription  TEXT NOT NULL CHECK (transcription <> ''),
		interpretation TEXT NOT NULL CHECK (interpretation <> '')
	)`,
	`CREATE INDEX IF NOT EXISTS dreams_user_created_idx ON dreams (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prompts (
		name       TEXT PRIMARY KEY,
		template   TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema создаёт таблицы, если их ещё нет
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
