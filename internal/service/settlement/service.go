package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/auctionhouse/dependable-auction-backend/internal/clock"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/catalog"
)

// ListingRepository is the settlement job's view of the listing store.
type ListingRepository interface {
	// GetByItemID returns the listing for an item.
	GetByItemID(ctx context.Context, itemID string) (*listing.Listing, error)

	// ListExpiredActive returns every Active listing with expiry <= now.
	ListExpiredActive(ctx context.Context, now time.Time) ([]*listing.Listing, error)

	// MarkSold performs the Active -> Sold transition as a conditional
	// write. It returns false when the listing was no longer Active, which
	// makes repeated settlement passes and overlapping jobs safe.
	MarkSold(ctx context.Context, itemID string, now time.Time) (bool, error)
}

// BidRepository is the settlement job's view of the bid ledger.
type BidRepository interface {
	HighestForItem(ctx context.Context, itemID string) (*bid.Bid, error)
}

// ReportRepository records the per-item settlement report rows. Reporting is
// observability output, not a correctness requirement: failures are logged
// and do not block the status transition.
type ReportRepository interface {
	SaveReport(ctx context.Context, r Report) error
}

// Report is one settlement output row: the item, its best bid if any, and
// the post-settlement status.
type Report struct {
	ItemID      string       `json:"item_id"`
	FinalStatus string       `json:"final_status"`
	BestBid     *values.Money `json:"best_bid,omitempty"`
	SettledAt   time.Time    `json:"settled_at"`
}

// MetricsCollector receives settlement outcome counts. Nil is valid.
type MetricsCollector interface {
	RecordSettlement(ctx context.Context, settled, scanned int)
}

// Service finalizes expired Active listings.
type Service struct {
	listings ListingRepository
	bids     BidRepository
	catalog  catalog.Gateway
	reports  ReportRepository
	clock    clock.Clock
	logger   *slog.Logger
	metrics  MetricsCollector
}

// NewService creates the settlement job.
func NewService(
	listings ListingRepository,
	bids BidRepository,
	cat catalog.Gateway,
	reports ReportRepository,
	clk clock.Clock,
	logger *slog.Logger,
	metrics MetricsCollector,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		listings: listings,
		bids:     bids,
		catalog:  cat,
		reports:  reports,
		clock:    clk,
		logger:   logger,
		metrics:  metrics,
	}
}

// SettleNow runs a settlement pass at the injected clock's current time.
func (s *Service) SettleNow(ctx context.Context) ([]Report, error) {
	return s.Settle(ctx, s.clock.Now())
}

// Settle scans for Active listings whose expiry has passed and finalizes
// them. The transition rule is carried over from the source system as-is: an
// expired listing whose best bid is absent or below list price is marked
// Sold. Listings already transitioned by an earlier or concurrent pass are
// skipped, so running Settle twice produces no second transition.
func (s *Service) Settle(ctx context.Context, now time.Time) ([]Report, error) {
	expired, err := s.listings.ListExpiredActive(ctx, now)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(expired))
	settled := 0
	for _, l := range expired {
		report, transitioned, err := s.settleOne(ctx, l, now)
		if err != nil {
			// One bad item must not abort the batch; the listing stays
			// Active and the next pass retries it.
			s.logger.ErrorContext(ctx, "settlement failed for item",
				"item_id", l.ItemID, "error", err)
			continue
		}
		if transitioned {
			settled++
		}
		reports = append(reports, report)
	}

	if s.metrics != nil {
		s.metrics.RecordSettlement(ctx, settled, len(expired))
	}
	s.logger.InfoContext(ctx, "settlement pass complete",
		"scanned", len(expired), "settled", settled)
	return reports, nil
}

func (s *Service) settleOne(ctx context.Context, l *listing.Listing, now time.Time) (Report, bool, error) {
	best, err := s.bids.HighestForItem(ctx, l.ItemID)
	if err != nil {
		return Report{}, false, err
	}

	product, err := s.catalog.GetProduct(ctx, l.ItemID)
	if err != nil {
		return Report{}, false, err
	}

	finalStatus := l.Status
	transitioned := false
	if best == nil || best.Amount.LessThan(product.ListPrice) {
		ok, err := s.listings.MarkSold(ctx, l.ItemID, now)
		if err != nil {
			return Report{}, false, err
		}
		if ok {
			finalStatus = listing.StatusSold
			transitioned = true
		} else {
			// Lost the race to another pass; re-read for the report.
			if current, err := s.listings.GetByItemID(ctx, l.ItemID); err == nil {
				finalStatus = current.Status
			}
		}
	}

	report := Report{
		ItemID:      l.ItemID,
		FinalStatus: finalStatus.String(),
		SettledAt:   now,
	}
	if best != nil {
		amount := best.Amount
		report.BestBid = &amount
	}

	if s.reports != nil {
		if err := s.reports.SaveReport(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "failed to save settlement report",
				"item_id", l.ItemID, "error", err)
		}
	}
	return report, transitioned, nil
}
