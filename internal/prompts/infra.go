package prompts

import (
	"context"
	"database/sql"
	"errors"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) ListAll(ctx context.Context) ([]*Prompt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, template, updated_at
		FROM prompts
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.Name, &p.Template, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *repo) Get(ctx context.Context, name string) (*Prompt, error) {
	var p Prompt
	err := r.db.QueryRowContext(ctx, `
		SELECT name, template, updated_at
		FROM prompts
		WHERE name = $1
	`, name).Scan(&p.Name, &p.Template, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Upsert(ctx context.Context, name, template string) (*Prompt, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO prompts (name, template, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name)
		DO UPDATE SET template = $2, updated_at = NOW()
		RETURNING name, template, updated_at
	`, name, template)

	var p Prompt
	if err := row.Scan(&p.Name, &p.Template, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
