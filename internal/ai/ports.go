package ai

import "context"

// Transcriber: голос → текст
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Interpreter: промпт → ответ генеративной модели
type Interpreter interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service толкует расшифровку сна
type Service interface {
	Interpret(ctx context.Context, transcription string) (string, error)
}
