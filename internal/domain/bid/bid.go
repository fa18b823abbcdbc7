package bid

import (
	"time"

	"github.com/google/uuid"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

// Bid is one accepted bid in the append-only ledger. Bids are immutable and
// never deleted; AcceptedAt is the authoritative ordering key within an item.
type Bid struct {
	ID         uuid.UUID    `json:"id"`
	ItemID     string       `json:"item_id"`
	BidderID   uuid.UUID    `json:"bidder_id"`
	Amount     values.Money `json:"amount"`
	AcceptedAt time.Time    `json:"accepted_at"`
	CreatedAt  time.Time    `json:"created_at"`
}

// New creates an accepted bid. acceptedAt comes from the engine's clock,
// assigned inside the per-item critical section so ledger order matches
// acceptance order.
func New(itemID string, bidderID uuid.UUID, amount values.Money, acceptedAt time.Time) *Bid {
	return &Bid{
		ID:         uuid.New(),
		ItemID:     itemID,
		BidderID:   bidderID,
		Amount:     amount,
		AcceptedAt: acceptedAt,
		CreatedAt:  acceptedAt,
	}
}
