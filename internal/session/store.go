// Package session keeps wizard states for in-flight intake sessions.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/bloomly/internal/models"
)

var ErrNotFound = errors.New("session not found")

type entry struct {
	state    models.WizardState
	lastSeen time.Time
}

// Store holds one WizardState per session id. States are cloned on the way
// in and out, so callers never share memory with the store or each other.
type Store struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

func (store *Store) Create(state models.WizardState) string {
	id := uuid.NewString()

	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[id] = entry{state: state.Clone(), lastSeen: store.now()}
	return id
}

func (store *Store) Get(id string) (models.WizardState, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	current, ok := store.sessions[id]
	if !ok {
		return models.WizardState{}, ErrNotFound
	}
	current.lastSeen = store.now()
	store.sessions[id] = current
	return current.state.Clone(), nil
}

// Put replaces the state of an existing session.
func (store *Store) Put(id string, state models.WizardState) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.sessions[id]; !ok {
		return ErrNotFound
	}
	store.sessions[id] = entry{state: state.Clone(), lastSeen: store.now()}
	return nil
}

func (store *Store) Delete(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, id)
}

func (store *Store) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}

// Sweep drops sessions idle for longer than ttl and reports how many went.
func (store *Store) Sweep(now time.Time, ttl time.Duration) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	threshold := now.Add(-ttl)
	removed := 0
	for id, current := range store.sessions {
		if current.lastSeen.Before(threshold) {
			delete(store.sessions, id)
			removed++
		}
	}
	return removed
}
