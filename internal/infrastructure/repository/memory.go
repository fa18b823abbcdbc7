package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// MemoryStore is an in-memory implementation of the listing store, the bid
// ledger, the settlement report sink and the history projection. Unit and
// concurrency tests run against it, and it is the store for ephemeral local
// deployments. Each item's listing and bids form one consistency unit guarded
// by the store mutex.
type MemoryStore struct {
	mu       sync.RWMutex
	listings map[string]*listing.Listing
	bids     map[string][]*bid.Bid
	reports  []settlement.Report
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings: make(map[string]*listing.Listing),
		bids:     make(map[string][]*bid.Bid),
	}
}

var (
	_ auction.ListingRepository    = (*MemoryStore)(nil)
	_ auction.BidRepository        = (*MemoryStore)(nil)
	_ settlement.ListingRepository = (*MemoryStore)(nil)
	_ settlement.BidRepository     = (*MemoryStore)(nil)
	_ settlement.ReportRepository  = (*MemoryStore)(nil)
	_ history.Repository           = (*MemoryStore)(nil)
)

func (s *MemoryStore) Create(_ context.Context, l *listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[l.ItemID]; exists {
		return apperrors.ErrListingExists
	}
	clone := *l
	s.listings[l.ItemID] = &clone
	return nil
}

func (s *MemoryStore) GetByItemID(_ context.Context, itemID string) (*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[itemID]
	if !ok {
		return nil, apperrors.ErrListingNotFound
	}
	clone := *l
	return &clone, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, l *listing.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.listings[l.ItemID]
	if !ok {
		return apperrors.ErrListingNotFound
	}
	if stored.Status != listing.StatusActive {
		return apperrors.ErrAlreadyTerminal
	}
	stored.Status = l.Status
	stored.UpdatedAt = l.UpdatedAt
	return nil
}

func (s *MemoryStore) ListExpiredActive(_ context.Context, now time.Time) ([]*listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []*listing.Listing
	for _, l := range s.listings {
		if l.Status == listing.StatusActive && !l.Expiry.After(now) {
			clone := *l
			expired = append(expired, &clone)
		}
	}
	return expired, nil
}

func (s *MemoryStore) MarkSold(_ context.Context, itemID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[itemID]
	if !ok || l.Status != listing.StatusActive {
		return false, nil
	}
	l.Status = listing.StatusSold
	l.UpdatedAt = now
	return true, nil
}

func (s *MemoryStore) Append(_ context.Context, b *bid.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[b.ItemID]; !ok {
		return apperrors.ErrListingNotFound
	}
	clone := *b
	s.bids[b.ItemID] = append(s.bids[b.ItemID], &clone)
	return nil
}

func (s *MemoryStore) HighestForItem(_ context.Context, itemID string) (*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest *bid.Bid
	for _, b := range s.bids[itemID] {
		if highest == nil || b.Amount.Compare(highest.Amount) > 0 {
			highest = b
		}
	}
	if highest == nil {
		return nil, nil
	}
	clone := *highest
	return &clone, nil
}

func (s *MemoryStore) ListByItem(_ context.Context, itemID string) ([]*bid.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bids := make([]*bid.Bid, 0, len(s.bids[itemID]))
	for _, b := range s.bids[itemID] {
		clone := *b
		bids = append(bids, &clone)
	}
	return bids, nil
}

func (s *MemoryStore) ListByBidder(_ context.Context, bidderID uuid.UUID, start, end time.Time, activeOnly bool) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []history.Entry
	for itemID, bids := range s.bids {
		l, ok := s.listings[itemID]
		if !ok {
			continue
		}
		if activeOnly && l.Status != listing.StatusActive {
			continue
		}
		for _, b := range bids {
			if b.BidderID != bidderID {
				continue
			}
			if b.AcceptedAt.Before(start) || b.AcceptedAt.After(end) {
				continue
			}
			entries = append(entries, history.Entry{Bid: *b, ListingStatus: l.Status})
		}
	}
	return entries, nil
}

func (s *MemoryStore) SaveReport(_ context.Context, r settlement.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

// Reports returns a copy of the saved settlement report rows.
func (s *MemoryStore) Reports() []settlement.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]settlement.Report, len(s.reports))
	copy(out, s.reports)
	return out
}
