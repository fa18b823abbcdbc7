package rest

import (
	"time"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// Request payloads. Monetary amounts travel as decimal strings; floats never
// cross the wire.

type createListingRequest struct {
	ItemID       string     `json:"item_id" validate:"required"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	InitialPrice *string    `json:"initial_price,omitempty"`
}

type placeBidRequest struct {
	BidderID string  `json:"bidder_id" validate:"required,uuid4"`
	Amount   *string `json:"amount,omitempty"`
}

type settleRequest struct {
	// Now overrides the settlement instant; empty means the server clock.
	Now *time.Time `json:"now,omitempty"`
}

// Response payloads.

type listingResponse struct {
	ItemID       string    `json:"item_id"`
	InitialPrice string    `json:"initial_price"`
	Currency     string    `json:"currency"`
	Expiry       time.Time `json:"expiry"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toListingResponse(l *listing.Listing) listingResponse {
	return listingResponse{
		ItemID:       l.ItemID,
		InitialPrice: l.InitialPrice.Amount().StringFixed(2),
		Currency:     l.InitialPrice.Currency(),
		Expiry:       l.Expiry,
		Status:       l.Status.String(),
		CreatedAt:    l.CreatedAt,
	}
}

type bidResponse struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"item_id"`
	BidderID   string    `json:"bidder_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	AcceptedAt time.Time `json:"accepted_at"`
}

func toBidResponse(b *bid.Bid) bidResponse {
	return bidResponse{
		ID:         b.ID.String(),
		ItemID:     b.ItemID,
		BidderID:   b.BidderID.String(),
		Amount:     b.Amount.Amount().StringFixed(2),
		Currency:   b.Amount.Currency(),
		AcceptedAt: b.AcceptedAt,
	}
}

type settleResponse struct {
	Settled []settlement.Report `json:"settled"`
}

type historyEntryResponse struct {
	Bid           bidResponse `json:"bid"`
	ListingStatus string      `json:"listing_status"`
}

func toHistoryResponse(entries []history.Entry) []historyEntryResponse {
	out := make([]historyEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, historyEntryResponse{
			Bid:           toBidResponse(&entries[i].Bid),
			ListingStatus: entries[i].ListingStatus.String(),
		})
	}
	return out
}

type errorBody struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
