// Package fixtures provides builders for test entities.
package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/catalog"
)

// ProductBuilder builds catalog products for tests.
type ProductBuilder struct {
	itemID         string
	listPrice      string
	manufactured   bool
	saleEndsAt     *time.Time
	discontinuedAt *time.Time
}

// NewProductBuilder creates a ProductBuilder with a commercially active
// default product.
func NewProductBuilder(itemID string) *ProductBuilder {
	return &ProductBuilder{
		itemID:    itemID,
		listPrice: "100.00",
	}
}

// WithListPrice sets the catalog list price.
func (b *ProductBuilder) WithListPrice(price string) *ProductBuilder {
	b.listPrice = price
	return b
}

// Manufactured marks the product as made in-house.
func (b *ProductBuilder) Manufactured() *ProductBuilder {
	b.manufactured = true
	return b
}

// WithSaleEndsAt sets a sale-end date, making the product commercially
// inactive.
func (b *ProductBuilder) WithSaleEndsAt(t time.Time) *ProductBuilder {
	b.saleEndsAt = &t
	return b
}

// WithDiscontinuedAt sets a discontinuation date.
func (b *ProductBuilder) WithDiscontinuedAt(t time.Time) *ProductBuilder {
	b.discontinuedAt = &t
	return b
}

// Build creates the Product.
func (b *ProductBuilder) Build(t *testing.T) *catalog.Product {
	t.Helper()
	return &catalog.Product{
		ItemID:         b.itemID,
		ListPrice:      values.MustMoney(b.listPrice, values.USD),
		Manufactured:   b.manufactured,
		SaleEndsAt:     b.saleEndsAt,
		DiscontinuedAt: b.discontinuedAt,
	}
}

// ListingBuilder builds listings for tests.
type ListingBuilder struct {
	itemID       string
	initialPrice string
	expiry       time.Time
	status       listing.Status
	createdAt    time.Time
}

// NewListingBuilder creates a ListingBuilder with an active listing.
func NewListingBuilder(itemID string) *ListingBuilder {
	now := time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)
	return &ListingBuilder{
		itemID:       itemID,
		initialPrice: "50.00",
		expiry:       now.Add(7 * 24 * time.Hour),
		status:       listing.StatusActive,
		createdAt:    now,
	}
}

// WithInitialPrice sets the starting price.
func (b *ListingBuilder) WithInitialPrice(price string) *ListingBuilder {
	b.initialPrice = price
	return b
}

// WithExpiry sets the bidding deadline.
func (b *ListingBuilder) WithExpiry(expiry time.Time) *ListingBuilder {
	b.expiry = expiry
	return b
}

// WithStatus sets the lifecycle status.
func (b *ListingBuilder) WithStatus(status listing.Status) *ListingBuilder {
	b.status = status
	return b
}

// Build creates the Listing.
func (b *ListingBuilder) Build(t *testing.T) *listing.Listing {
	t.Helper()
	l := listing.New(b.itemID, values.MustMoney(b.initialPrice, values.USD), b.expiry, b.createdAt)
	l.Status = b.status
	return l
}

// NewBid creates an accepted bid for tests.
func NewBid(t *testing.T, itemID string, amount string, acceptedAt time.Time) *bid.Bid {
	t.Helper()
	return bid.New(itemID, uuid.New(), values.MustMoney(amount, values.USD), acceptedAt)
}
