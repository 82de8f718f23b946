package transport

import (
	"sync"
	"time"

	"stock-ledger/internal/domain"

	"github.com/google/uuid"
)

// pendingTTL bounds how long an abandoned pending sale is kept
const pendingTTL = 12 * time.Hour

type pendingEntry struct {
	mu        sync.Mutex
	sale      *domain.PendingSale
	touchedAt time.Time
}

// pendingRegistry holds the open pending sales of all operators.
// Each entry has its own lock so one slow finalize does not block others.
type pendingRegistry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*pendingEntry
	now     func() time.Time
}

func newPendingRegistry(now func() time.Time) *pendingRegistry {
	if now == nil {
		now = time.Now
	}
	return &pendingRegistry{
		entries: make(map[uuid.UUID]*pendingEntry),
		now:     now,
	}
}

func (r *pendingRegistry) open(sale *domain.PendingSale) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked()
	id := uuid.New()
	r.entries[id] = &pendingEntry{sale: sale, touchedAt: r.now()}
	return id
}

// with runs fn while holding the entry lock; it reports false for unknown ids
func (r *pendingRegistry) with(id uuid.UUID, fn func(sale *domain.PendingSale)) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		entry.touchedAt = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.sale)
	return true
}

func (r *pendingRegistry) discard(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

func (r *pendingRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *pendingRegistry) pruneLocked() {
	cutoff := r.now().Add(-pendingTTL)
	for id, entry := range r.entries {
		if entry.touchedAt.Before(cutoff) {
			delete(r.entries, id)
		}
	}
}
