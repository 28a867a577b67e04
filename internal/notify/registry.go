package notify

import (
	"sync"

	"github.com/gosuda/caseflow/internal/messenger"
)

// Registry is a map-based MessengerRegistry, safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	messengers map[string]messenger.Messenger
}

func NewRegistry() *Registry {
	return &Registry{
		messengers: make(map[string]messenger.Messenger),
	}
}

// Register adds m under its own platform name, replacing any previous one.
func (r *Registry) Register(m messenger.Messenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messengers[m.Platform()] = m
}

func (r *Registry) Get(platform string) (messenger.Messenger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.messengers[platform]
	return m, ok
}
