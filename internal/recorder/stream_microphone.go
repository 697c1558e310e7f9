package recorder

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
)

var ErrNoAudioStream = errors.New("no audio stream: microphone permission denied or not shared")

var errReaderStuck = errors.New("audio stream reader did not exit")

const readerExitWait = 5 * time.Second

// StreamMicrophone: "микрофон" клиента, который присылает аудио потоком в теле запроса.
type StreamMicrophone struct {
	src       io.Reader
	interrupt func() error
}

func NewStreamMicrophone(src io.Reader) *StreamMicrophone {
	return &StreamMicrophone{src: src}
}

// WithInterrupt задаёт, как прервать висящий Read источника.
// Для тела запроса это дедлайн чтения на соединении.
func (m *StreamMicrophone) WithInterrupt(fn func() error) *StreamMicrophone {
	m.interrupt = fn
	return m
}

func (m *StreamMicrophone) Open(_ context.Context) (Capture, error) {
	if m.src == nil || m.src == http.NoBody {
		return nil, ErrNoAudioStream
	}
	return newStreamCapture(m.src, m.interrupt), nil
}

type streamCapture struct {
	src       io.Reader
	interrupt func() error

	chunks   chan []byte
	errc     chan error
	closed   chan struct{}
	loopDone chan struct{}
	once     sync.Once
	closeErr error
	pending  []byte
}

func newStreamCapture(src io.Reader, interrupt func() error) *streamCapture {
	c := &streamCapture{
		src:       src,
		interrupt: interrupt,
		chunks:    make(chan []byte),
		errc:      make(chan error, 1),
		closed:    make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *streamCapture) readLoop() {
	defer close(c.loopDone)

	buf := make([]byte, readChunkSize)
	for {
		n, err := c.src.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.chunks <- chunk:
			case <-c.closed:
				return
			}
		}
		if err != nil {
			c.errc <- err
			return
		}
	}
}

func (c *streamCapture) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}

	select {
	case <-c.closed:
		return 0, io.EOF
	case chunk := <-c.chunks:
		n := copy(p, chunk)
		c.pending = chunk[n:]
		return n, nil
	case err := <-c.errc:
		return 0, err
	}
}

// Close отпускает источник и ждёт выхода читающей горутины:
// после возврата тело запроса больше никто не трогает.
func (c *streamCapture) Close() error {
	c.once.Do(func() {
		close(c.closed)

		select {
		case <-c.loopDone:
			return
		default:
		}

		if c.interrupt != nil {
			if err := c.interrupt(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				c.closeErr = err
			}
		}
		// http/1 body.Close ждёт текущий Read, поэтому не блокируемся на нём
		if rc, ok := c.src.(io.Closer); ok {
			go func() { _ = rc.Close() }()
		}

		select {
		case <-c.loopDone:
		case <-time.After(readerExitWait):
			c.closeErr = errors.Join(c.closeErr, errReaderStuck)
		}
	})
	return c.closeErr
}
