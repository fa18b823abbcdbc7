package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/database"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// bidRepository implements the append-only bid ledger on PostgreSQL. Appends
// run in a transaction that takes the listing's row lock, mirroring the
// engine's in-process per-item lock at the storage layer.
type bidRepository struct {
	db *database.Pool
}

// NewBidRepository creates the PostgreSQL bid ledger.
func NewBidRepository(db *database.Pool) *bidRepository {
	return &bidRepository{db: db}
}

var (
	_ auction.BidRepository    = (*bidRepository)(nil)
	_ settlement.BidRepository = (*bidRepository)(nil)
	_ history.Repository       = (*bidRepository)(nil)
)

func (r *bidRepository) Append(ctx context.Context, b *bid.Bid) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var one int
		err := tx.QueryRow(ctx,
			`SELECT 1 FROM listings WHERE item_id = $1 FOR UPDATE`, b.ItemID,
		).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrListingNotFound
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bids (id, item_id, bidder_id, amount, accepted_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			b.ID,
			b.ItemID,
			b.BidderID,
			b.Amount.Amount().StringFixed(2),
			b.AcceptedAt,
			b.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append bid: %w", err)
		}
		return nil
	})
}

func (r *bidRepository) HighestForItem(ctx context.Context, itemID string) (*bid.Bid, error) {
	query := `
		SELECT id, item_id, bidder_id, amount::text, accepted_at, created_at
		FROM bids
		WHERE item_id = $1
		ORDER BY amount DESC, accepted_at DESC
		LIMIT 1
	`
	b, err := scanBid(r.db.Pgx().QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}
	return b, nil
}

func (r *bidRepository) ListByItem(ctx context.Context, itemID string) ([]*bid.Bid, error) {
	query := `
		SELECT id, item_id, bidder_id, amount::text, accepted_at, created_at
		FROM bids
		WHERE item_id = $1
		ORDER BY accepted_at, created_at
	`
	rows, err := r.db.Pgx().Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []*bid.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func (r *bidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID, start, end time.Time, activeOnly bool) ([]history.Entry, error) {
	query := `
		SELECT b.id, b.item_id, b.bidder_id, b.amount::text, b.accepted_at, b.created_at, l.status
		FROM bids b
		JOIN listings l ON l.item_id = b.item_id
		WHERE b.bidder_id = $1 AND b.accepted_at >= $2 AND b.accepted_at <= $3
	`
	args := []any{bidderID, start, end}
	if activeOnly {
		query += ` AND l.status = 'active'`
	}

	rows, err := r.db.Pgx().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bid history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var (
			b         bid.Bid
			amount    string
			statusStr string
		)
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BidderID, &amount, &b.AcceptedAt, &b.CreatedAt, &statusStr); err != nil {
			return nil, err
		}
		money, err := values.NewMoneyFromString(amount, values.USD)
		if err != nil {
			return nil, fmt.Errorf("invalid stored bid amount: %w", err)
		}
		b.Amount = money
		status, err := listing.ParseStatus(statusStr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, history.Entry{Bid: b, ListingStatus: status})
	}
	return entries, rows.Err()
}

func scanBid(row rowScanner) (*bid.Bid, error) {
	var (
		b      bid.Bid
		amount string
	)
	if err := row.Scan(&b.ID, &b.ItemID, &b.BidderID, &amount, &b.AcceptedAt, &b.CreatedAt); err != nil {
		return nil, err
	}
	money, err := values.NewMoneyFromString(amount, values.USD)
	if err != nil {
		return nil, fmt.Errorf("invalid stored bid amount: %w", err)
	}
	b.Amount = money
	return &b, nil
}
