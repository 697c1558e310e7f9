package prompts

import (
	"context"
	"time"
)

const (
	Interpretation = "interpretation"

	// Placeholder подставляется текстом расшифровки
	Placeholder = "{{dream}}"

	DefaultInterpretation = "Interpret this dream: " + Placeholder
)

type Repo interface {
	ListAll(ctx context.Context) ([]*Prompt, error)
	Get(ctx context.Context, name string) (*Prompt, error) // nil, nil если нет
	Upsert(ctx context.Context, name, template string) (*Prompt, error)
}

type Service interface {
	ListAll(ctx context.Context) ([]*Prompt, error)
	Get(ctx context.Context, name string) (*Prompt, error)
	Update(ctx context.Context, name, template string) (*Prompt, error)
	Render(ctx context.Context, name, text string) (string, error)
}

type Prompt struct {
	Name      string    `json:"name"`
	Template  string    `json:"template"`
	UpdatedAt time.Time `json:"updated_at"`
}
