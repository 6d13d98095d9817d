package cart

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"sip-sunshine/internal/logger"
)

// Manager hands out one Store per session, loading the persisted snapshot
// on first use. Concurrent first requests for the same session share a
// single load through singleflight.
type Manager struct {
	mu        sync.RWMutex
	stores    map[string]*Store
	sfg       singleflight.Group
	snapshots SnapshotStore
	notifier  Notifier
	logger    *logger.Logger
}

func NewManager(snapshots SnapshotStore, notifier Notifier, log *logger.Logger) *Manager {
	return &Manager{
		stores:    make(map[string]*Store),
		snapshots: snapshots,
		notifier:  notifier,
		logger:    log,
	}
}

// Get returns the cart store for a session, creating and loading it when
// seen for the first time.
func (m *Manager) Get(ctx context.Context, session string) *Store {
	m.mu.RLock()
	store, ok := m.stores[session]
	m.mu.RUnlock()
	if ok {
		return store
	}

	v, _, _ := m.sfg.Do(session, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.stores[session]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		store := NewStore(session, m.snapshots, m.notifier, m.logger)
		store.Load(ctx)

		m.mu.Lock()
		m.stores[session] = store
		m.mu.Unlock()
		return store, nil
	})

	return v.(*Store)
}
