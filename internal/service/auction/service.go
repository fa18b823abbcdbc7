package auction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/dependable-auction-backend/internal/clock"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/catalog"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/directory"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/config"
)

// Initial price floors as a fraction of catalog list price. Items we
// manufacture ourselves can start lower than resale stock.
var (
	manufacturedFloorRatio = decimal.RequireFromString("0.50")
	resaleFloorRatio       = decimal.RequireFromString("0.75")
)

// Config holds the engine's business parameters, derived from the auction
// section of the application config.
type Config struct {
	Season                 config.Season
	Increment              values.Money
	DefaultListingDuration time.Duration
	Currency               string
}

// MetricsCollector receives bid outcome counts. Nil is a valid collector.
type MetricsCollector interface {
	RecordBidAccepted(ctx context.Context, amount values.Money)
	RecordBidRejected(ctx context.Context, code string)
}

// Service is the bidding engine: it owns listing admission, bid validation
// and acceptance, and listing cancellation. It is the sole writer to the bid
// ledger.
type Service struct {
	listings  ListingRepository
	bids      BidRepository
	catalog   catalog.Gateway
	directory directory.Directory
	clock     clock.Clock
	cfg       Config
	locks     *itemLocks
	logger    *slog.Logger
	metrics   MetricsCollector
}

// NewService creates the bidding engine.
func NewService(
	listings ListingRepository,
	bids BidRepository,
	cat catalog.Gateway,
	dir directory.Directory,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
	metrics MetricsCollector,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		listings:  listings,
		bids:      bids,
		catalog:   cat,
		directory: dir,
		clock:     clk,
		cfg:       cfg,
		locks:     newItemLocks(),
		logger:    logger,
		metrics:   metrics,
	}
}

// CreateListingRequest carries listing admission input. Expiry and
// InitialPrice are optional; defaults are derived from the season window and
// the catalog list price.
type CreateListingRequest struct {
	ItemID       string
	Expiry       *time.Time
	InitialPrice *values.Money
}

// CreateListing validates and inserts a new Active listing for an item.
func (s *Service) CreateListing(ctx context.Context, req CreateListingRequest) (*listing.Listing, error) {
	if req.ItemID == "" {
		return nil, errors.ErrMissingItemID
	}

	product, err := s.catalog.GetProduct(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !product.CommerciallyActive() {
		return nil, errors.ErrItemNotCommercial.WithDetails(map[string]interface{}{
			"item_id": req.ItemID,
		})
	}

	expiry := s.cfg.Season.Start.Add(s.cfg.DefaultListingDuration)
	if req.Expiry != nil {
		if !s.cfg.Season.Contains(*req.Expiry) {
			return nil, errors.ErrInvalidExpiry
		}
		expiry = req.Expiry.UTC()
	}

	floor := s.initialPriceFloor(product)
	initialPrice := floor
	if req.InitialPrice != nil {
		if req.InitialPrice.LessThan(floor) || req.InitialPrice.GreaterThanOrEqual(product.ListPrice) {
			return nil, errors.ErrInvalidPrice.WithDetails(map[string]interface{}{
				"floor":   floor.String(),
				"ceiling": product.ListPrice.String(),
			})
		}
		initialPrice = *req.InitialPrice
	}

	l := listing.New(req.ItemID, initialPrice, expiry, s.clock.Now())
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "listing created",
		"item_id", l.ItemID,
		"initial_price", l.InitialPrice.String(),
		"expiry", l.Expiry)
	return l, nil
}

// PlaceBidRequest carries one bid attempt. A nil Amount asks the engine to
// synthesize the minimum acceptable bid.
type PlaceBidRequest struct {
	ItemID   string
	BidderID uuid.UUID
	Amount   *values.Money
}

// PlaceBid validates a bid against the item's current state and, on success,
// appends it to the ledger. The whole read-floor / compare / append sequence
// runs under the item's lock, so concurrent bids on one item serialize and
// each accepted bid observes all previously accepted ones. Rejections leave
// every store untouched.
func (s *Service) PlaceBid(ctx context.Context, req PlaceBidRequest) (*bid.Bid, error) {
	if req.ItemID == "" {
		return nil, s.reject(ctx, errors.ErrMissingItemID)
	}
	if req.BidderID == uuid.Nil {
		return nil, s.reject(ctx, errors.ErrMissingBidderID)
	}

	release := s.locks.Acquire(req.ItemID)
	defer release()

	l, err := s.listings.GetByItemID(ctx, req.ItemID)
	if err != nil {
		return nil, s.reject(ctx, err)
	}
	if l.Status == listing.StatusCancelled {
		return nil, s.reject(ctx, errors.ErrListingCancelled)
	}

	known, err := s.directory.Exists(ctx, req.BidderID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, s.reject(ctx, errors.ErrBidderNotFound)
	}

	// Floor unifies "beat the initial price" and "beat the running max"
	// into one monotone comparison.
	floor := l.InitialPrice
	highest, err := s.bids.HighestForItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if highest != nil {
		floor = floor.Max(highest.Amount)
	}

	minAcceptable, err := floor.Add(s.cfg.Increment)
	if err != nil {
		return nil, errors.NewInternalError("floor arithmetic failed").WithCause(err)
	}

	amount := minAcceptable
	if req.Amount != nil {
		if req.Amount.LessThan(minAcceptable) {
			return nil, s.reject(ctx, errors.ErrBidTooLow.WithDetails(map[string]interface{}{
				"floor":          floor.String(),
				"min_acceptable": minAcceptable.String(),
				"amount":         req.Amount.String(),
			}))
		}
		amount = *req.Amount
	}

	now := s.clock.Now()
	if !s.cfg.Season.Contains(now) {
		return nil, s.reject(ctx, errors.ErrOutOfSeason)
	}
	if l.ExpiredAt(now) {
		return nil, s.reject(ctx, errors.ErrListingExpired)
	}

	product, err := s.catalog.GetProduct(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThanOrEqual(product.ListPrice) {
		return nil, s.reject(ctx, errors.ErrBidAboveCeiling.WithDetails(map[string]interface{}{
			"amount":     amount.String(),
			"list_price": product.ListPrice.String(),
		}))
	}

	b := bid.New(req.ItemID, req.BidderID, amount, now)
	if err := s.bids.Append(ctx, b); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordBidAccepted(ctx, b.Amount)
	}
	s.logger.InfoContext(ctx, "bid accepted",
		"item_id", b.ItemID,
		"bidder_id", b.BidderID,
		"amount", b.Amount.String())
	return b, nil
}

// CancelListing withdraws an item from auction. An absent listing and a
// listing that is already terminal are both explicit errors, never no-ops.
// Existing bids stay in the ledger as history.
func (s *Service) CancelListing(ctx context.Context, itemID string) error {
	if itemID == "" {
		return errors.ErrMissingItemID
	}

	release := s.locks.Acquire(itemID)
	defer release()

	l, err := s.listings.GetByItemID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := l.Cancel(s.clock.Now()); err != nil {
		return err
	}
	if err := s.listings.UpdateStatus(ctx, l); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "listing cancelled", "item_id", itemID)
	return nil
}

// GetListing returns an item's listing.
func (s *Service) GetListing(ctx context.Context, itemID string) (*listing.Listing, error) {
	if itemID == "" {
		return nil, errors.ErrMissingItemID
	}
	return s.listings.GetByItemID(ctx, itemID)
}

// ListBids returns the accepted-bid ledger for an item in acceptance order.
func (s *Service) ListBids(ctx context.Context, itemID string) ([]*bid.Bid, error) {
	if itemID == "" {
		return nil, errors.ErrMissingItemID
	}
	if _, err := s.listings.GetByItemID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.bids.ListByItem(ctx, itemID)
}

func (s *Service) initialPriceFloor(p *catalog.Product) values.Money {
	if p.Manufactured {
		return p.ListPrice.MulRatio(manufacturedFloorRatio)
	}
	return p.ListPrice.MulRatio(resaleFloorRatio)
}

func (s *Service) reject(ctx context.Context, err error) error {
	if s.metrics != nil {
		if code := errors.Code(err); code != "" {
			s.metrics.RecordBidRejected(ctx, code)
		}
	}
	return err
}
