package memory

import (
	"context"
	"sync"
)

// Store keeps the counter in memory. It counts writes so callers can
// check that an unchanged counter is not rewritten.
type Store struct {
	mu      sync.RWMutex
	value   int
	saves   int
	history []int
	saveErr error
}

func New(initial int) *Store {
	return &Store{value: initial}
}

// FailSaves makes every following Save return err (nil restores normal behaviour).
func (m *Store) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *Store) Load(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, nil
}

func (m *Store) Save(ctx context.Context, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.value = value
	m.history = append(m.history, value)
	return nil
}

// Saves is the number of Save calls, failed ones included.
func (m *Store) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// History lists successfully saved values in order.
func (m *Store) History() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, len(m.history))
	copy(out, m.history)
	return out
}
