package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/bid"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/repository"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
)

func seedBid(t *testing.T, store *repository.MemoryStore, itemID string, bidderID uuid.UUID, amount string, at time.Time) {
	t.Helper()
	b := bid.New(itemID, bidderID, values.MustMoney(amount, values.USD), at)
	require.NoError(t, store.Append(context.Background(), b))
}

func seedListing(t *testing.T, store *repository.MemoryStore, itemID string, status listing.Status) {
	t.Helper()
	now := time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
	l := listing.New(itemID, values.MustMoney("50.00", values.USD), now.Add(168*time.Hour), now)
	l.Status = status
	require.NoError(t, store.Create(context.Background(), l))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := history.NewService(store)

	bidder := uuid.New()
	other := uuid.New()
	day := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	seedListing(t, store, "sku-active", listing.StatusActive)
	seedListing(t, store, "sku-cancelled", listing.StatusCancelled)

	seedBid(t, store, "sku-active", bidder, "51.00", day)
	seedBid(t, store, "sku-active", other, "52.00", day)
	seedBid(t, store, "sku-active", bidder, "53.00", day.Add(48*time.Hour))
	seedBid(t, store, "sku-cancelled", bidder, "54.00", day)

	t.Run("filters by bidder and window", func(t *testing.T) {
		entries, err := svc.List(ctx, history.Query{
			BidderID: bidder,
			Start:    day.Add(-time.Hour),
			End:      day.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, bidder, e.Bid.BidderID)
		}
	})

	t.Run("active only drops bids on terminal listings", func(t *testing.T) {
		entries, err := svc.List(ctx, history.Query{
			BidderID:   bidder,
			Start:      day.Add(-time.Hour),
			End:        day.Add(72 * time.Hour),
			ActiveOnly: true,
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, "sku-active", e.Bid.ItemID)
			assert.Equal(t, listing.StatusActive, e.ListingStatus)
		}
	})

	t.Run("including terminal listings surfaces their status", func(t *testing.T) {
		entries, err := svc.List(ctx, history.Query{
			BidderID: bidder,
			Start:    day.Add(-time.Hour),
			End:      day.Add(time.Hour),
		})
		require.NoError(t, err)
		statuses := map[string]listing.Status{}
		for _, e := range entries {
			statuses[e.Bid.ItemID] = e.ListingStatus
		}
		assert.Equal(t, listing.StatusCancelled, statuses["sku-cancelled"])
	})

	t.Run("missing bidder ID", func(t *testing.T) {
		_, err := svc.List(ctx, history.Query{Start: day, End: day})
		require.ErrorIs(t, err, errors.ErrMissingBidderID)
	})

	t.Run("inverted window", func(t *testing.T) {
		_, err := svc.List(ctx, history.Query{BidderID: bidder, Start: day, End: day.Add(-time.Hour)})
		require.Error(t, err)
		assert.Equal(t, "INVALID_RANGE", errors.Code(err))
	})

	t.Run("no matches returns empty", func(t *testing.T) {
		entries, err := svc.List(ctx, history.Query{BidderID: uuid.New(), Start: day, End: day.Add(time.Hour)})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
