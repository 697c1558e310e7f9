package domain

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

const AudioContentType = "audio/webm"

type s3Service struct {
	client ports.S3Client
}

func NewS3Service(client ports.S3Client) ports.S3Service {
	return &s3Service{client: client}
}

// ObjectKey собирает <owner>_<unix ms>.webm без идемпотентности, повторная загрузка даёт новое имя
func (s *s3Service) ObjectKey(ownerID string, at time.Time) string {
	return fmt.Sprintf("%s_%d.webm", ownerID, at.UnixMilli())
}

func (s *s3Service) SaveAudio(ctx context.Context, key string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio")
	}
	return s.client.PutObject(ctx, key, bytes.NewReader(audio), int64(len(audio)), AudioContentType)
}
