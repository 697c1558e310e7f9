package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Vovarama1992/dreamcatcher/internal/config"
	"github.com/Vovarama1992/dreamcatcher/internal/prompts"
)

type AiService struct {
	interpreter Interpreter
	prompts     prompts.Service
	log         *zap.Logger
}

func NewAiService(interpreter Interpreter, promptSvc prompts.Service, log *zap.Logger) *AiService {
	return &AiService{
		interpreter: interpreter,
		prompts:     promptSvc,
		log:         log,
	}
}

func (s *AiService) Interpret(ctx context.Context, transcription string) (string, error) {
	transcription = strings.TrimSpace(transcription)
	if transcription == "" {
		return "", ErrEmptyTranscript
	}

	prompt, err := s.prompts.Render(ctx, prompts.Interpretation, transcription)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	s.log.Debug("interpret", zap.Int("prompt_len", len(prompt)))
	return s.interpreter.Generate(ctx, prompt)
}

var newGoogleSpeech = func(ctx context.Context, language string) (speechTranscriber, error) {
	return NewGoogleSpeechClient(ctx, language)
}

type speechTranscriber interface {
	Transcriber
	Close() error
}

// NewTranscriber выбирает бэкенд по TRANSCRIBER.
// Клиент Google переживает ctx, поэтому получает его без отмены.
func NewTranscriber(ctx context.Context, cfg config.TranscriberConfig) (Transcriber, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case "whisper", "":
		return NewWhisperClient(cfg), noop, nil
	case "deepgram":
		return NewDeepgramClient(cfg.DeepgramKey), noop, nil
	case "google":
		c, err := newGoogleSpeech(context.WithoutCancel(ctx), cfg.GoogleLanguage)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown transcriber %q", cfg.Kind)
}
