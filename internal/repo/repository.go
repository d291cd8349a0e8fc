package repo

import "context"

// CounterStore persists the downtime counter between invocations.
// A single writer is assumed; implementations do not lock.
type CounterStore interface {
	// Load returns the persisted counter, creating it as 0 if absent.
	Load(ctx context.Context) (int, error)
	// Save overwrites the persisted counter.
	Save(ctx context.Context, value int) error
}
