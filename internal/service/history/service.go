// Package history serves the read-only bid history projection: a filtered
// join of the bid ledger and the listing store. It has no invariants of its
// own beyond standard filter semantics.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
)

// Entry is one bid joined with the current status of its listing.
type Entry struct {
	Bid           bid.Bid        `json:"bid"`
	ListingStatus listing.Status `json:"listing_status"`
}

// Repository provides the underlying filtered join. No ordering is
// guaranteed beyond the store's default.
type Repository interface {
	ListByBidder(ctx context.Context, bidderID uuid.UUID, start, end time.Time, activeOnly bool) ([]Entry, error)
}

// Query selects a bidder's accepted bids within [Start, End], optionally
// restricted to bids on currently Active listings.
type Query struct {
	BidderID   uuid.UUID
	Start      time.Time
	End        time.Time
	ActiveOnly bool
}

// Service answers history queries.
type Service struct {
	repo Repository
}

// NewService creates the history query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the matching entries.
func (s *Service) List(ctx context.Context, q Query) ([]Entry, error) {
	if q.BidderID == uuid.Nil {
		return nil, errors.ErrMissingBidderID
	}
	if q.End.Before(q.Start) {
		return nil, errors.NewValidationError("INVALID_RANGE", "end must not precede start")
	}
	return s.repo.ListByBidder(ctx, q.BidderID, q.Start, q.End, q.ActiveOnly)
}
