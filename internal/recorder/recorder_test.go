package recorder

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipeMic struct {
	r      *io.PipeReader
	err    error
	opened int
}

func (m *pipeMic) Open(context.Context) (Capture, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.opened++
	return m.r, nil
}

func newPipeMic() (*pipeMic, *io.PipeWriter) {
	pr, pw := io.Pipe()
	return &pipeMic{r: pr}, pw
}

func waitStopped(t *testing.T, done <-chan struct{}, within time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(within):
		t.Fatalf("recording did not stop within %s", within)
	}
}

func TestMaxDurationIsThirtySeconds(t *testing.T) {
	assert.Equal(t, int64(30000), MaxDuration.Milliseconds())
}

func TestRecorder_ManualStop(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	mic, pw := newPipeMic()

	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)
	assert.Equal(t, StateRecording, rec.Status().State)

	_, err = pw.Write([]byte("chunk-1;"))
	require.NoError(t, err)
	_, err = pw.Write([]byte("chunk-2"))
	require.NoError(t, err)

	require.NoError(t, rec.Stop())
	waitStopped(t, done, time.Second)

	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, StopManual, st.StopReason)
	assert.Equal(t, len("chunk-1;chunk-2"), st.BlobSize)

	// устройство освобождено
	_, err = pw.Write([]byte("late"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestRecorder_AutoStopAtCeiling(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), 50*time.Millisecond, zap.NewNop())
	mic, pw := newPipeMic()

	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)

	_, err = pw.Write([]byte("opus-frames"))
	require.NoError(t, err)

	waitStopped(t, done, 2*time.Second)

	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, StopCeiling, st.StopReason)
	assert.Positive(t, st.BlobSize)

	err = rec.Stop()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRecorder_StreamEndStops(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	mic, pw := newPipeMic()

	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)

	_, err = pw.Write([]byte("whole dream"))
	require.NoError(t, err)
	require.NoError(t, pw.Close())

	waitStopped(t, done, time.Second)
	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, StopEnded, st.StopReason)
}

func TestRecorder_EmptyRecordingReturnsToIdle(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	mic, _ := newPipeMic()

	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)

	err = rec.Stop()
	assert.ErrorIs(t, err, ErrEmptyRecording)
	waitStopped(t, done, time.Second)
	st := rec.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, ErrEmptyRecording.Error(), st.Error)
}

func TestRecorder_MicrophoneDenied(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	mic := &pipeMic{err: errors.New("Permission denied")}

	_, err := rec.Start(context.Background(), mic)
	assert.ErrorIs(t, err, ErrMicrophone)
	assert.Contains(t, err.Error(), "Permission denied")
	assert.Equal(t, StateIdle, rec.Status().State)
}

func TestRecorder_SingleCaptureAtATime(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	mic, pw := newPipeMic()

	_, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)

	other, _ := newPipeMic()
	_, err = rec.Start(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Zero(t, other.opened)

	_, _ = pw.Write([]byte("x"))
	require.NoError(t, rec.Stop())
}

func recordSomething(t *testing.T, rec *Recorder, payload string) {
	t.Helper()
	mic, pw := newPipeMic()
	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)
	_, err = pw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, rec.Stop())
	waitStopped(t, done, time.Second)
}

func TestRecorder_UploadSuccessGoesIdle(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	recordSomething(t, rec, "dream-audio")

	var got []byte
	err := rec.Upload(context.Background(), func(_ context.Context, blob []byte) error {
		assert.Equal(t, StateUploading, rec.Status().State)
		got = blob
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("dream-audio"), got)

	st := rec.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Zero(t, st.BlobSize)
}

func TestRecorder_UploadFailureKeepsBlob(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	recordSomething(t, rec, "dream-audio")

	boom := errors.New("storage unavailable")
	err := rec.Upload(context.Background(), func(context.Context, []byte) error { return boom })
	assert.ErrorIs(t, err, boom)

	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, len("dream-audio"), st.BlobSize)

	// ручной повтор
	calls := 0
	require.NoError(t, rec.Upload(context.Background(), func(_ context.Context, blob []byte) error {
		calls++
		assert.Equal(t, []byte("dream-audio"), blob)
		return nil
	}))
	assert.Equal(t, 1, calls)
}

func TestRecorder_UploadRequiresRecording(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	err := rec.Upload(context.Background(), func(context.Context, []byte) error {
		t.Fatal("must not run")
		return nil
	})
	assert.True(t, IsInvalidState(err))
}

func TestRecorder_Discard(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())
	assert.ErrorIs(t, rec.Discard(), ErrInvalidState)

	recordSomething(t, rec, "bad take")
	require.NoError(t, rec.Discard())
	assert.Equal(t, StateIdle, rec.Status().State)

	// после discard можно записывать заново
	recordSomething(t, rec, "good take")
	assert.Equal(t, len("good take"), rec.Status().BlobSize)
}

type failingBuffer struct{ MemoryBuffer }

func (b *failingBuffer) Append(context.Context, []byte) error {
	return errors.New("redis: connection refused")
}

func TestRecorder_BufferFailureDropsRecording(t *testing.T) {
	rec := New("u1", &failingBuffer{}, time.Minute, zap.NewNop())
	mic, pw := newPipeMic()

	done, err := rec.Start(context.Background(), mic)
	require.NoError(t, err)
	_, _ = pw.Write([]byte("x"))

	waitStopped(t, done, time.Second)
	assert.Equal(t, StateIdle, rec.Status().State)
}

func TestManager_OneRecorderPerOwner(t *testing.T) {
	m := NewManager(func(string) ChunkBuffer { return NewMemoryBuffer() }, time.Minute, zap.NewNop())

	a := m.Get("alice")
	assert.Same(t, a, m.Get("alice"))
	assert.NotSame(t, a, m.Get("bob"))

	m.Forget("alice")
	assert.NotSame(t, a, m.Get("alice"))
}
