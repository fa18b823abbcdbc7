// Package directory is the read-only gateway to customer master data. The
// bidding engine only ever asks one question of it: does this customer exist.
package directory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Directory resolves a customer identifier to existence.
type Directory interface {
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// StaticDirectory answers from an in-memory set. Used in tests and local
// development.
type StaticDirectory struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]struct{}
}

// NewStaticDirectory creates a StaticDirectory seeded with the given IDs.
func NewStaticDirectory(ids ...uuid.UUID) *StaticDirectory {
	d := &StaticDirectory{customers: make(map[uuid.UUID]struct{})}
	for _, id := range ids {
		d.customers[id] = struct{}{}
	}
	return d
}

// Add registers a customer.
func (d *StaticDirectory) Add(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[id] = struct{}{}
}

func (d *StaticDirectory) Exists(_ context.Context, customerID uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.customers[customerID]
	return ok, nil
}
