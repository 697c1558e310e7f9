package ai

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleSpeechClient: Cloud Speech-to-Text, авторизация через ADC.
type GoogleSpeechClient struct {
	client   *speech.Client
	language string
}

func NewGoogleSpeechClient(ctx context.Context, language string) (*GoogleSpeechClient, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleSpeechClient{client: client, language: language}, nil
}

func (c *GoogleSpeechClient) Close() error {
	return c.client.Close()
}

func (c *GoogleSpeechClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            48000,
			LanguageCode:               c.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google recognize: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
