package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const readChunkSize = 32 << 10

// Recorder ведёт запись одного владельца, idle → recording → recorded → uploading → idle.
type Recorder struct {
	mu      sync.Mutex
	ownerID string
	ceiling time.Duration
	buf     ChunkBuffer
	log     *zap.Logger

	state      State
	gen        uint64
	capture    Capture
	timer      *time.Timer
	pumpDone   chan struct{}
	pumpErr    error
	done       chan struct{}
	startedAt  time.Time
	stopReason StopReason
	lastErr    error
	blob       []byte
}

func New(ownerID string, buf ChunkBuffer, ceiling time.Duration, log *zap.Logger) *Recorder {
	if ceiling <= 0 {
		ceiling = MaxDuration
	}
	return &Recorder{
		ownerID: ownerID,
		ceiling: ceiling,
		buf:     buf,
		log:     log.With(zap.String("owner", ownerID)),
		state:   StateIdle,
	}
}

// Start захватывает микрофон и начинает копить аудио.
// Возвращаемый канал закрывается, когда запись остановлена по любой причине.
func (r *Recorder) Start(ctx context.Context, mic Microphone) (<-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return nil, fmt.Errorf("%w: start while %s", ErrInvalidState, r.state)
	}

	capture, err := mic.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMicrophone, err)
	}
	if err := r.buf.Reset(ctx); err != nil {
		_ = capture.Close()
		return nil, fmt.Errorf("reset buffer: %w", err)
	}

	r.gen++
	gen := r.gen
	r.state = StateRecording
	r.capture = capture
	r.pumpDone = make(chan struct{})
	r.pumpErr = nil
	r.done = make(chan struct{})
	r.startedAt = time.Now()
	r.stopReason = ""
	r.lastErr = nil
	r.blob = nil

	go func(done chan struct{}) {
		r.pump(capture, done)
		_ = r.stop(gen, StopEnded)
	}(r.pumpDone)

	r.timer = time.AfterFunc(r.ceiling, func() {
		if err := r.stop(gen, StopCeiling); err == nil {
			r.log.Info("recording hit ceiling", zap.Duration("ceiling", r.ceiling))
		}
	})

	r.log.Info("recording started")
	return r.done, nil
}

// Stop: остановка пользователем
func (r *Recorder) Stop() error {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()
	return r.stop(gen, StopManual)
}

func (r *Recorder) stop(gen uint64, reason StopReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording || r.gen != gen {
		return fmt.Errorf("%w: stop while %s", ErrInvalidState, r.state)
	}

	r.timer.Stop()
	if err := r.capture.Close(); err != nil {
		r.log.Warn("release capture", zap.Error(err))
	}
	<-r.pumpDone
	r.capture = nil
	defer close(r.done)

	ctx := context.Background()
	blob, err := r.buf.Bytes(ctx)
	if resetErr := r.buf.Reset(ctx); resetErr != nil {
		r.log.Warn("reset buffer", zap.Error(resetErr))
	}

	switch {
	case r.pumpErr != nil:
		err = r.pumpErr
	case err == nil && len(blob) == 0:
		err = ErrEmptyRecording
	}
	if err != nil {
		r.state = StateIdle
		r.lastErr = err
		r.log.Warn("recording dropped", zap.String("reason", string(reason)), zap.Error(err))
		return err
	}

	r.blob = blob
	r.state = StateRecorded
	r.stopReason = reason
	r.log.Info("recording stopped",
		zap.String("reason", string(reason)),
		zap.String("size", humanize.Bytes(uint64(len(blob)))),
		zap.Duration("elapsed", time.Since(r.startedAt)),
	)
	return nil
}

func (r *Recorder) pump(capture Capture, done chan struct{}) {
	defer close(done)

	buf := make([]byte, readChunkSize)
	for {
		n, err := capture.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if appendErr := r.buf.Append(context.Background(), chunk); appendErr != nil {
				r.pumpErr = fmt.Errorf("buffer chunk: %w", appendErr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Upload запускает загрузку записанного blob. При ошибке blob остаётся,
// состояние возвращается в recorded, и пользователь может повторить.
func (r *Recorder) Upload(ctx context.Context, run UploadFunc) error {
	r.mu.Lock()
	if r.state != StateRecorded {
		state := r.state
		r.mu.Unlock()
		return fmt.Errorf("%w: upload while %s", ErrInvalidState, state)
	}
	r.state = StateUploading
	blob := r.blob
	r.mu.Unlock()

	err := run(ctx, blob)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateRecorded
		return err
	}
	r.blob = nil
	r.stopReason = ""
	r.state = StateIdle
	return nil
}

// Discard выбрасывает записанный blob
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecorded {
		return fmt.Errorf("%w: discard while %s", ErrInvalidState, r.state)
	}
	r.blob = nil
	r.stopReason = ""
	r.state = StateIdle
	return nil
}

func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{
		State:      r.state,
		BlobSize:   len(r.blob),
		StopReason: r.stopReason,
	}
	if r.state != StateIdle {
		started := r.startedAt
		st.StartedAt = &started
	}
	if r.lastErr != nil {
		st.Error = r.lastErr.Error()
	}
	return st
}

func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
