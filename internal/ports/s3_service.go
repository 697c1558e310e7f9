package ports

import (
	"context"
	"time"
)

type S3Service interface {
	ObjectKey(ownerID string, at time.Time) string
	SaveAudio(ctx context.Context, key string, audio []byte) (string, error)
}
