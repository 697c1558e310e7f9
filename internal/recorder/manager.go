package recorder

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type BufferFactory func(ownerID string) ChunkBuffer

// Manager держит по одному Recorder на владельца
type Manager struct {
	mu        sync.Mutex
	recorders map[string]*Recorder
	newBuffer BufferFactory
	ceiling   time.Duration
	log       *zap.Logger
}

func NewManager(newBuffer BufferFactory, ceiling time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		recorders: make(map[string]*Recorder),
		newBuffer: newBuffer,
		ceiling:   ceiling,
		log:       log,
	}
}

func (m *Manager) Get(ownerID string) *Recorder {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.recorders[ownerID]
	if !ok {
		rec = New(ownerID, m.newBuffer(ownerID), m.ceiling, m.log)
		m.recorders[ownerID] = rec
	}
	return rec
}

// Forget убирает простаивающий recorder (после выхода пользователя)
func (m *Manager) Forget(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.recorders[ownerID]; ok && rec.Status().State == StateIdle {
		delete(m.recorders, ownerID)
	}
}
