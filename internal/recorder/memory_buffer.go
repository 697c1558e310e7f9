package recorder

import (
	"bytes"
	"context"
	"sync"
)

type MemoryBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

func (b *MemoryBuffer) Append(_ context.Context, chunk []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.buf.Write(chunk)
	return err
}

func (b *MemoryBuffer) Bytes(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes()), nil
}

func (b *MemoryBuffer) Reset(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	return nil
}
