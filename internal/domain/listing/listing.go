package listing

import (
	"time"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

// Status is the closed lifecycle variant of a listing. Active is the only
// non-terminal state; Sold and Cancelled are one-way transitions out of it.
type Status int

const (
	StatusActive Status = iota
	StatusSold
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusSold:
		return "sold"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseStatus converts the stored string form back into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "sold":
		return StatusSold, nil
	case "cancelled":
		return StatusCancelled, nil
	default:
		return 0, errors.NewInternalError("unknown listing status: " + s)
	}
}

// IsTerminal reports whether the status permits no further mutation.
func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusCancelled
}

// Listing is one item's auction record. ItemID is the catalog SKU and is
// unique across listings; InitialPrice is immutable once set.
type Listing struct {
	ItemID       string       `json:"item_id"`
	InitialPrice values.Money `json:"initial_price"`
	Expiry       time.Time    `json:"expiry"`
	Status       Status       `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// New creates an Active listing.
func New(itemID string, initialPrice values.Money, expiry, now time.Time) *Listing {
	return &Listing{
		ItemID:       itemID,
		InitialPrice: initialPrice,
		Expiry:       expiry,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Cancel transitions Active -> Cancelled. A second cancel, or a cancel of a
// sold listing, is an explicit ALREADY_TERMINAL error rather than a no-op.
func (l *Listing) Cancel(now time.Time) error {
	if l.Status.IsTerminal() {
		return errors.ErrAlreadyTerminal.WithDetails(map[string]interface{}{
			"item_id": l.ItemID,
			"status":  l.Status.String(),
		})
	}
	l.Status = StatusCancelled
	l.UpdatedAt = now
	return nil
}

// MarkSold transitions Active -> Sold.
func (l *Listing) MarkSold(now time.Time) error {
	if l.Status.IsTerminal() {
		return errors.ErrAlreadyTerminal.WithDetails(map[string]interface{}{
			"item_id": l.ItemID,
			"status":  l.Status.String(),
		})
	}
	l.Status = StatusSold
	l.UpdatedAt = now
	return nil
}

// ExpiredAt reports whether the bidding window has closed as of now.
func (l *Listing) ExpiredAt(now time.Time) bool {
	return now.After(l.Expiry)
}
