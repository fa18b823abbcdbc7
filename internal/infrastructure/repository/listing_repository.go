package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/database"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// listingRepository implements the listing store on PostgreSQL. Status
// transitions are conditional single-statement writes, so two concurrent
// settlement passes (or a settle racing a cancel) can never double-transition
// a listing.
type listingRepository struct {
	db *database.Pool
}

// NewListingRepository creates the PostgreSQL listing store.
func NewListingRepository(db *database.Pool) *listingRepository {
	return &listingRepository{db: db}
}

var (
	_ auction.ListingRepository    = (*listingRepository)(nil)
	_ settlement.ListingRepository = (*listingRepository)(nil)
)

func (r *listingRepository) Create(ctx context.Context, l *listing.Listing) error {
	query := `
		INSERT INTO listings (item_id, initial_price, expiry, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Pgx().Exec(ctx, query,
		l.ItemID,
		l.InitialPrice.Amount().StringFixed(2),
		l.Expiry,
		l.Status.String(),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrListingExists
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByItemID(ctx context.Context, itemID string) (*listing.Listing, error) {
	query := `
		SELECT item_id, initial_price::text, expiry, status, created_at, updated_at
		FROM listings
		WHERE item_id = $1
	`
	l, err := scanListing(r.db.Pgx().QueryRow(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, l *listing.Listing) error {
	query := `
		UPDATE listings
		SET status = $2, updated_at = $3
		WHERE item_id = $1 AND status = 'active'
	`
	tag, err := r.db.Pgx().Exec(ctx, query, l.ItemID, l.Status.String(), l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyTerminal
	}
	return nil
}

func (r *listingRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*listing.Listing, error) {
	query := `
		SELECT item_id, initial_price::text, expiry, status, created_at, updated_at
		FROM listings
		WHERE status = 'active' AND expiry <= $1
		ORDER BY expiry
	`
	rows, err := r.db.Pgx().Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired listings: %w", err)
	}
	defer rows.Close()

	var listings []*listing.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *listingRepository) MarkSold(ctx context.Context, itemID string, now time.Time) (bool, error) {
	query := `
		UPDATE listings
		SET status = 'sold', updated_at = $2
		WHERE item_id = $1 AND status = 'active'
	`
	tag, err := r.db.Pgx().Exec(ctx, query, itemID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark listing sold: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*listing.Listing, error) {
	var (
		l         listing.Listing
		price     string
		statusStr string
	)
	if err := row.Scan(&l.ItemID, &price, &l.Expiry, &statusStr, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}

	initialPrice, err := values.NewMoneyFromString(price, values.USD)
	if err != nil {
		return nil, fmt.Errorf("invalid stored initial price: %w", err)
	}
	l.InitialPrice = initialPrice

	status, err := listing.ParseStatus(statusStr)
	if err != nil {
		return nil, err
	}
	l.Status = status
	return &l, nil
}
