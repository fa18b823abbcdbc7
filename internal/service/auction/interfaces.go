package auction

import (
	"context"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
)

// ListingRepository is the engine's view of the listing store.
type ListingRepository interface {
	// Create inserts a new listing, returning errors.ErrListingExists when
	// the item already has one.
	Create(ctx context.Context, l *listing.Listing) error

	// GetByItemID returns the listing for an item, or errors.ErrListingNotFound.
	GetByItemID(ctx context.Context, itemID string) (*listing.Listing, error)

	// UpdateStatus persists a status transition. The write is conditional on
	// the stored row still being Active; errors.ErrAlreadyTerminal is
	// returned when another writer got there first.
	UpdateStatus(ctx context.Context, l *listing.Listing) error
}

// BidRepository is the engine's view of the append-only bid ledger.
type BidRepository interface {
	// Append adds an accepted bid to the ledger.
	Append(ctx context.Context, b *bid.Bid) error

	// HighestForItem returns the highest accepted bid for an item, or nil
	// when no bids exist. Absence is a valid state, not an error.
	HighestForItem(ctx context.Context, itemID string) (*bid.Bid, error)

	// ListByItem returns all accepted bids for an item ordered by
	// acceptance time.
	ListByItem(ctx context.Context, itemID string) ([]*bid.Bid, error)
}
