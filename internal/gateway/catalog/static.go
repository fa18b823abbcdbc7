package catalog

import (
	"context"
	"sync"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
)

// StaticGateway serves products from an in-memory map. Used in tests and for
// local development without a catalog database.
type StaticGateway struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewStaticGateway creates a StaticGateway seeded with the given products.
func NewStaticGateway(products ...*Product) *StaticGateway {
	g := &StaticGateway{products: make(map[string]*Product)}
	for _, p := range products {
		g.products[p.ItemID] = p
	}
	return g
}

// Put adds or replaces a product.
func (g *StaticGateway) Put(p *Product) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products[p.ItemID] = p
}

func (g *StaticGateway) GetProduct(_ context.Context, itemID string) (*Product, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.products[itemID]
	if !ok {
		return nil, apperrors.ErrItemNotFound
	}
	clone := *p
	return &clone, nil
}
