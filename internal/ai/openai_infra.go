package ai

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/dreamcatcher/internal/config"
)

var ErrEmptyTranscript = errors.New("empty transcript")

// WhisperClient ходит в OpenAI-совместимый /audio/transcriptions
// (облако или локальный whisper-сервер через OPENAI_BASE_URL).
type WhisperClient struct {
	client *openai.Client
	model  string
}

func NewWhisperClient(cfg config.TranscriberConfig) *WhisperClient {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
	}
	model := cfg.OpenAIModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperClient{
		client: openai.NewClientWithConfig(oc),
		model:  model,
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: "dream.webm",
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
