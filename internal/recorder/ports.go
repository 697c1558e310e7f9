package recorder

import (
	"context"
	"errors"
	"io"
	"time"
)

// MaxDuration: потолок одной записи, после него запись останавливается сама
const MaxDuration = 30 * time.Second

type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateRecorded  State = "recorded"
	StateUploading State = "uploading"
)

type StopReason string

const (
	StopManual  StopReason = "manual"
	StopCeiling StopReason = "ceiling"
	StopEnded   StopReason = "ended"
)

var (
	ErrMicrophone     = errors.New("microphone unavailable")
	ErrInvalidState   = errors.New("action not allowed in current state")
	ErrEmptyRecording = errors.New("nothing was recorded")
)

// Capture: захваченный микрофон. Close освобождает устройство и обязан
// разблокировать висящий Read.
type Capture interface {
	io.Reader
	io.Closer
}

type Microphone interface {
	Open(ctx context.Context) (Capture, error)
}

// ChunkBuffer копит куски аудио до остановки записи
type ChunkBuffer interface {
	Append(ctx context.Context, chunk []byte) error
	Bytes(ctx context.Context) ([]byte, error)
	Reset(ctx context.Context) error
}

// UploadFunc получает финальный blob; ошибка оставляет blob в памяти
type UploadFunc func(ctx context.Context, blob []byte) error

type Status struct {
	State      State      `json:"state"`
	BlobSize   int        `json:"blob_size"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	StopReason StopReason `json:"stop_reason,omitempty"`
	Error      string     `json:"error,omitempty"` // почему последняя запись не сохранилась
}
