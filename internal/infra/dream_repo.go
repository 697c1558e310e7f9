package infra

import (
	"context"
	"database/sql"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type dreamRepo struct {
	db *sql.DB
}

func NewDreamRepo(db *sql.DB) ports.DreamRepo {
	return &dreamRepo{db: db}
}

func (r *dreamRepo) Create(ctx context.Context, d ports.NewDream) (*ports.DreamRecord, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	rec := ports.DreamRecord{
		OwnerID:        d.OwnerID,
		AudioURL:       d.AudioURL,
		Transcription:  d.Transcription,
		Interpretation: d.Interpretation,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO dreams (user_id, audio_url, transcription, interpretation)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, d.OwnerID, d.AudioURL, d.Transcription, d.Interpretation).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *dreamRepo) ListByOwner(ctx context.Context, ownerID string) ([]ports.DreamRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, user_id, audio_url, transcription, interpretation
		FROM dreams
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []ports.DreamRecord{}
	for rows.Next() {
		var rec ports.DreamRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.OwnerID,
			&rec.AudioURL,
			&rec.Transcription,
			&rec.Interpretation,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
