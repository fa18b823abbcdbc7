// Package catalog is the read-only gateway to product master data. The
// auction core treats it as an external collaborator: item list prices,
// manufacturing flags and commercialization windows are resolved here and
// never mutated.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

// Product is the catalog view of one item.
type Product struct {
	ItemID         string       `json:"item_id"`
	ListPrice      values.Money `json:"list_price"`
	Manufactured   bool         `json:"manufactured"`
	SaleEndsAt     *time.Time   `json:"sale_ends_at,omitempty"`
	DiscontinuedAt *time.Time   `json:"discontinued_at,omitempty"`
}

// CommerciallyActive reports whether the item may be listed for auction:
// no sale-end date, no discontinuation date, and a positive list price.
func (p *Product) CommerciallyActive() bool {
	return p.SaleEndsAt == nil && p.DiscontinuedAt == nil && p.ListPrice.IsPositive()
}

// Gateway resolves an item identifier to its catalog record. Implementations
// return errors.ErrItemNotFound for unknown items.
type Gateway interface {
	GetProduct(ctx context.Context, itemID string) (*Product, error)
}

// MarshalBinary/UnmarshalBinary let Product round-trip through the redis
// cache without an intermediate wrapper.
func (p *Product) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *Product) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}
