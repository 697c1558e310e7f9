package recorder

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStreamMicrophone_NoBody(t *testing.T) {
	_, err := NewStreamMicrophone(http.NoBody).Open(context.Background())
	assert.ErrorIs(t, err, ErrNoAudioStream)

	_, err = NewStreamMicrophone(nil).Open(context.Background())
	assert.ErrorIs(t, err, ErrNoAudioStream)
}

func TestStreamMicrophone_ReadsWholeStream(t *testing.T) {
	payload := strings.Repeat("opus", 20000)
	capture, err := NewStreamMicrophone(strings.NewReader(payload)).Open(context.Background())
	require.NoError(t, err)

	got, err := io.ReadAll(capture)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestStreamMicrophone_CloseUnblocksRead(t *testing.T) {
	pr, _ := io.Pipe()
	capture, err := NewStreamMicrophone(pr).Open(context.Background())
	require.NoError(t, err)

	res := make(chan error, 1)
	go func() {
		_, err := capture.Read(make([]byte, 8))
		res <- err
	}()

	require.NoError(t, capture.Close())
	select {
	case err := <-res:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("read still blocked after close")
	}
}

func TestRecorder_WithStreamMicrophone(t *testing.T) {
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())

	done, err := rec.Start(context.Background(), NewStreamMicrophone(bytes.NewReader([]byte("webm-data"))))
	require.NoError(t, err)
	waitStopped(t, done, time.Second)

	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, len("webm-data"), st.BlobSize)
}

// stallingBody отдаёт first и потом висит в Read, как тело запроса от живого клиента
type stallingBody struct {
	first    []byte
	release  chan struct{}
	stalled  atomic.Bool
	inFlight atomic.Int32
}

func newStallingBody(first string) *stallingBody {
	return &stallingBody{first: []byte(first), release: make(chan struct{})}
}

func (b *stallingBody) Read(p []byte) (int, error) {
	b.inFlight.Add(1)
	defer b.inFlight.Add(-1)

	if len(b.first) > 0 {
		n := copy(p, b.first)
		b.first = b.first[n:]
		return n, nil
	}
	b.stalled.Store(true)
	<-b.release
	return 0, os.ErrDeadlineExceeded
}

func (b *stallingBody) interrupt() error {
	close(b.release)
	return nil
}

func TestRecorder_StopDuringOpenStreamReleasesBody(t *testing.T) {
	body := newStallingBody("first-chunk")
	rec := New("u1", NewMemoryBuffer(), time.Minute, zap.NewNop())

	done, err := rec.Start(context.Background(), NewStreamMicrophone(body).WithInterrupt(body.interrupt))
	require.NoError(t, err)
	require.Eventually(t, body.stalled.Load, time.Second, 5*time.Millisecond)

	require.NoError(t, rec.Stop())
	waitStopped(t, done, time.Second)

	assert.Zero(t, body.inFlight.Load(), "body is still being read after stop")
	st := rec.Status()
	assert.Equal(t, StateRecorded, st.State)
	assert.Equal(t, len("first-chunk"), st.BlobSize)
}

func TestRecorder_CeilingDuringOpenStreamReleasesBody(t *testing.T) {
	body := newStallingBody("opus")
	rec := New("u1", NewMemoryBuffer(), 200*time.Millisecond, zap.NewNop())

	done, err := rec.Start(context.Background(), NewStreamMicrophone(body).WithInterrupt(body.interrupt))
	require.NoError(t, err)
	waitStopped(t, done, time.Second)

	assert.Zero(t, body.inFlight.Load())
	assert.Equal(t, StopCeiling, rec.Status().StopReason)
}

func TestStreamMicrophone_NoInterruptAfterStreamEnd(t *testing.T) {
	var calls atomic.Int32
	mic := NewStreamMicrophone(strings.NewReader("webm")).WithInterrupt(func() error {
		calls.Add(1)
		return nil
	})
	capture, err := mic.Open(context.Background())
	require.NoError(t, err)

	_, err = io.ReadAll(capture)
	require.NoError(t, err)
	require.NoError(t, capture.Close())
	assert.Zero(t, calls.Load())
}

func TestStreamMicrophone_UnsupportedInterruptIgnored(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	mic := NewStreamMicrophone(pr).WithInterrupt(func() error { return http.ErrNotSupported })
	capture, err := mic.Open(context.Background())
	require.NoError(t, err)

	assert.NoError(t, capture.Close())
}
