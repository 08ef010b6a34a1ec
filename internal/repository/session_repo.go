package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jcarlosmelian/promtscp/internal/session"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// SessionRepository stores walkthrough snapshots for the lifetime of a session.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*session.State, error)
	Save(ctx context.Context, state *session.State) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	state     *session.State
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	lastSweep time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. A ttl of zero
// disables expiry.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySessionRepository{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (r *memorySessionRepository) Get(_ context.Context, id string) (*session.State, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.entries, id)
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.state.Clone(), nil
}

func (r *memorySessionRepository) Save(_ context.Context, state *session.State) error {
	if state == nil || state.ID == "" {
		return errors.New("session state requires an id")
	}
	now := r.now()
	entry := memoryEntry{state: state.Clone()}
	if r.ttl > 0 {
		entry.expiresAt = now.Add(r.ttl)
	}

	r.mu.Lock()
	r.entries[state.ID] = entry
	r.sweepLocked(now)
	r.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries at most once per ttl. Callers hold mu.
func (r *memorySessionRepository) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, entry := range r.entries {
		if now.After(entry.expiresAt) {
			delete(r.entries, id)
		}
	}
}

func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}
