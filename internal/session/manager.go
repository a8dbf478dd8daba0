package session

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/logging"
)

// Manager owns the current session id. There is exactly one current id at
// any time; requests already in flight keep the id they captured, so Reset
// never affects them.
type Manager struct {
	store   Store
	current string
	newID   func() string
	log     zerolog.Logger
	mu      sync.RWMutex
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithIDGenerator replaces NewID
func WithIDGenerator(gen func() string) ManagerOption {
	return func(m *Manager) {
		m.newID = gen
	}
}

// WithLogger sets the manager logger
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager loads the stored id, creating and saving a new one when the
// store is empty
func NewManager(store Store, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, apierrors.ErrNoSessionStore
	}

	m := &Manager{
		store: store,
		newID: NewID,
		log:   logging.Component("session"),
	}
	for _, opt := range opts {
		opt(m)
	}

	id, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if id == "" {
		id = m.newID()
		if err := store.Save(id); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		m.log.Debug().Str("session_id", id).Msg("created session")
	} else {
		m.log.Debug().Str("session_id", id).Msg("resumed session")
	}

	m.current = id
	return m, nil
}

// Current returns the current session id
func (m *Manager) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset replaces the current id with a fresh one and persists it.
// On a save failure the previous id stays current.
func (m *Manager) Reset() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	if err := m.store.Save(id); err != nil {
		return m.current, fmt.Errorf("failed to save session: %w", err)
	}

	m.log.Debug().Str("previous", m.current).Str("session_id", id).Msg("session reset")
	m.current = id
	return id, nil
}
