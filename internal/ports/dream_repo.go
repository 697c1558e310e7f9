package ports

import (
	"context"
	"errors"
	"time"
)

var ErrIncompleteRecord = errors.New("dream record is incomplete")

// DreamRecord: результат одного цикла записи. Создаётся целиком, потом только читается.
type DreamRecord struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	OwnerID        string    `json:"user_id"`
	AudioURL       string    `json:"audio_url"`
	Transcription  string    `json:"transcription"`
	Interpretation string    `json:"interpretation"`
}

type NewDream struct {
	OwnerID        string
	AudioURL       string
	Transcription  string
	Interpretation string
}

func (d NewDream) Validate() error {
	if d.OwnerID == "" || d.AudioURL == "" || d.Transcription == "" || d.Interpretation == "" {
		return ErrIncompleteRecord
	}
	return nil
}

// Репозиторий Postgres. Ни update, ни delete нет намеренно.
type DreamRepo interface {
	Create(ctx context.Context, d NewDream) (*DreamRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]DreamRecord, error)
}
