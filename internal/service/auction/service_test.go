package auction_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/dependable-auction-backend/internal/clock"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/catalog"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/directory"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/config"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/repository"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/testutil/fixtures"
)

var (
	seasonStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seasonEnd   = time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)
	// before the default expiry of seasonStart + 168h
	midSeason = time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC)
)

type testEnv struct {
	svc       *auction.Service
	store     *repository.MemoryStore
	catalog   *catalog.StaticGateway
	directory *directory.StaticDirectory
	clock     *clock.Fake
	bidderID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	cat := catalog.NewStaticGateway()
	bidderID := uuid.New()
	dir := directory.NewStaticDirectory(bidderID)
	clk := clock.NewFake(midSeason)

	cfg := auction.Config{
		Season:                 config.Season{Start: seasonStart, End: seasonEnd},
		Increment:              values.MustMoney("0.05", values.USD),
		DefaultListingDuration: 168 * time.Hour,
		Currency:               values.USD,
	}

	return &testEnv{
		svc:       auction.NewService(store, store, cat, dir, clk, cfg, nil, nil),
		store:     store,
		catalog:   cat,
		directory: dir,
		clock:     clk,
		bidderID:  bidderID,
	}
}

func (e *testEnv) listItem(t *testing.T, itemID string, opts ...func(*fixtures.ProductBuilder)) *listing.Listing {
	t.Helper()
	b := fixtures.NewProductBuilder(itemID)
	for _, opt := range opts {
		opt(b)
	}
	e.catalog.Put(b.Build(t))

	l, err := e.svc.CreateListing(context.Background(), auction.CreateListingRequest{ItemID: itemID})
	require.NoError(t, err)
	return l
}

func manufactured(b *fixtures.ProductBuilder) { b.Manufactured() }

func money(t *testing.T, s string) values.Money {
	t.Helper()
	return values.MustMoney(s, values.USD)
}

func TestService_CreateListing(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(*testing.T, *testEnv)
		request  auction.CreateListingRequest
		wantErr  error
		validate func(*testing.T, *listing.Listing)
	}{
		{
			name: "manufactured item defaults to half list price",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-1").WithListPrice("100.00").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{ItemID: "sku-1"},
			validate: func(t *testing.T, l *listing.Listing) {
				assert.True(t, l.InitialPrice.Equal(values.MustMoney("50.00", values.USD)))
				assert.Equal(t, listing.StatusActive, l.Status)
				assert.Equal(t, seasonStart.Add(168*time.Hour), l.Expiry)
			},
		},
		{
			name: "resale item defaults to three quarters of list price",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-2").WithListPrice("200.00").Build(t))
			},
			request: auction.CreateListingRequest{ItemID: "sku-2"},
			validate: func(t *testing.T, l *listing.Listing) {
				assert.True(t, l.InitialPrice.Equal(values.MustMoney("150.00", values.USD)))
			},
		},
		{
			name: "explicit price within band is accepted",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-3").WithListPrice("100.00").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{
				ItemID:       "sku-3",
				InitialPrice: ptr(values.MustMoney("80.00", values.USD)),
			},
			validate: func(t *testing.T, l *listing.Listing) {
				assert.True(t, l.InitialPrice.Equal(values.MustMoney("80.00", values.USD)))
			},
		},
		{
			name: "explicit price below floor is rejected",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-4").WithListPrice("100.00").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{
				ItemID:       "sku-4",
				InitialPrice: ptr(values.MustMoney("49.99", values.USD)),
			},
			wantErr: errors.ErrInvalidPrice,
		},
		{
			name: "explicit price at list price is rejected",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-5").WithListPrice("100.00").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{
				ItemID:       "sku-5",
				InitialPrice: ptr(values.MustMoney("100.00", values.USD)),
			},
			wantErr: errors.ErrInvalidPrice,
		},
		{
			name: "explicit expiry inside the season is kept",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-6").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{
				ItemID: "sku-6",
				Expiry: ptr(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
			},
			validate: func(t *testing.T, l *listing.Listing) {
				assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), l.Expiry)
			},
		},
		{
			name: "expiry outside the season is rejected",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-7").Manufactured().Build(t))
			},
			request: auction.CreateListingRequest{
				ItemID: "sku-7",
				Expiry: ptr(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)),
			},
			wantErr: errors.ErrInvalidExpiry,
		},
		{
			name:    "missing item ID",
			setup:   func(*testing.T, *testEnv) {},
			request: auction.CreateListingRequest{},
			wantErr: errors.ErrMissingItemID,
		},
		{
			name:    "unknown item",
			setup:   func(*testing.T, *testEnv) {},
			request: auction.CreateListingRequest{ItemID: "missing"},
			wantErr: errors.ErrItemNotFound,
		},
		{
			name: "discontinued item is rejected",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-8").
					WithDiscontinuedAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).Build(t))
			},
			request: auction.CreateListingRequest{ItemID: "sku-8"},
			wantErr: errors.ErrItemNotCommercial,
		},
		{
			name: "item with a sale-end date is rejected",
			setup: func(t *testing.T, e *testEnv) {
				e.catalog.Put(fixtures.NewProductBuilder("sku-9").
					WithSaleEndsAt(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)).Build(t))
			},
			request: auction.CreateListingRequest{ItemID: "sku-9"},
			wantErr: errors.ErrItemNotCommercial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setup(t, env)

			l, err := env.svc.CreateListing(ctx, tt.request)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validate(t, l)
		})
	}
}

func TestService_CreateListing_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.listItem(t, "sku-dup", manufactured)

	_, err := env.svc.CreateListing(context.Background(), auction.CreateListingRequest{ItemID: "sku-dup"})
	require.ErrorIs(t, err, errors.ErrListingExists)
}

func TestService_PlaceBid_SynthesizedAmounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listItem(t, "sku-a", manufactured) // list 100.00, initial 50.00

	first, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
	require.NoError(t, err)
	assert.True(t, first.Amount.Equal(money(t, "50.05")), "got %s", first.Amount)

	second, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
	require.NoError(t, err)
	assert.True(t, second.Amount.Equal(money(t, "50.10")), "got %s", second.Amount)

	ledger, err := env.svc.ListBids(ctx, "sku-a")
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, first.ID, ledger[0].ID)
	assert.Equal(t, second.ID, ledger[1].ID)
}

func TestService_PlaceBid_ExplicitAmounts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prior   []string
		amount  string
		wantErr error
	}{
		{name: "exactly floor plus increment is accepted", amount: "50.05"},
		{name: "one cent short of the minimum is rejected", amount: "50.04", wantErr: errors.ErrBidTooLow},
		{name: "equal to the floor is rejected", amount: "50.00", wantErr: errors.ErrBidTooLow},
		{name: "must clear the highest bid, not the initial price", prior: []string{"60.00"}, amount: "50.05", wantErr: errors.ErrBidTooLow},
		{name: "beats the highest bid by the increment", prior: []string{"60.00"}, amount: "60.05"},
		{name: "one cent below list price is accepted", amount: "99.99"},
		{name: "equal to list price is rejected", amount: "100.00", wantErr: errors.ErrBidAboveCeiling},
		{name: "above list price is rejected", amount: "120.00", wantErr: errors.ErrBidAboveCeiling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.listItem(t, "sku-x", manufactured) // list 100.00, initial 50.00

			for _, p := range tt.prior {
				_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{
					ItemID: "sku-x", BidderID: env.bidderID, Amount: ptr(money(t, p)),
				})
				require.NoError(t, err)
			}

			_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{
				ItemID: "sku-x", BidderID: env.bidderID, Amount: ptr(money(t, tt.amount)),
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestService_PlaceBid_Gating(t *testing.T) {
	ctx := context.Background()

	t.Run("missing item ID", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrMissingItemID)
	})

	t.Run("missing bidder ID", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a"})
		require.ErrorIs(t, err, errors.ErrMissingBidderID)
	})

	t.Run("no listing for item", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrListingNotFound)
	})

	t.Run("unknown bidder", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: uuid.New()})
		require.ErrorIs(t, err, errors.ErrBidderNotFound)
	})

	t.Run("cancelled listing", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)
		require.NoError(t, env.svc.CancelListing(ctx, "sku-a"))
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrListingCancelled)
	})

	t.Run("before the season opens", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)
		env.clock.Set(seasonStart.Add(-time.Hour))
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrOutOfSeason)
	})

	t.Run("after the season closes", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)
		env.clock.Set(seasonEnd.Add(time.Hour))
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrOutOfSeason)
	})

	t.Run("expired listing inside the season", func(t *testing.T) {
		env := newTestEnv(t)
		l := env.listItem(t, "sku-a", manufactured)
		env.clock.Set(l.Expiry.Add(time.Minute))
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.ErrorIs(t, err, errors.ErrListingExpired)
	})

	t.Run("at the exact expiry instant bids still land", func(t *testing.T) {
		env := newTestEnv(t)
		l := env.listItem(t, "sku-a", manufactured)
		env.clock.Set(l.Expiry)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.NoError(t, err)
	})
}

func TestService_PlaceBid_RejectionLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listItem(t, "sku-a", manufactured)

	accepted, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
	require.NoError(t, err)

	_, err = env.svc.PlaceBid(ctx, auction.PlaceBidRequest{
		ItemID: "sku-a", BidderID: env.bidderID, Amount: ptr(money(t, "10.00")),
	})
	require.ErrorIs(t, err, errors.ErrBidTooLow)

	ledger, err := env.svc.ListBids(ctx, "sku-a")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, accepted.ID, ledger[0].ID)

	l, err := env.svc.GetListing(ctx, "sku-a")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusActive, l.Status)
}

func TestService_PlaceBid_ConcurrentBidsSerialize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.listItem(t, "sku-a", manufactured) // initial 50.00, ceiling 100.00

	const bidders = 100

	var wg sync.WaitGroup
	errs := make([]error, bidders)
	for i := 0; i < bidders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "bid %d", i)
	}

	ledger, err := env.svc.ListBids(ctx, "sku-a")
	require.NoError(t, err)
	require.Len(t, ledger, bidders)

	// Each accepted bid observed every prior one, so amounts are strictly
	// increasing in ledger order.
	for i := 1; i < len(ledger); i++ {
		require.True(t, ledger[i-1].Amount.LessThan(ledger[i].Amount),
			"ledger[%d]=%s not above ledger[%d]=%s",
			i, ledger[i].Amount, i-1, ledger[i-1].Amount)
	}
	assert.True(t, ledger[bidders-1].Amount.Equal(money(t, "55.00")),
		"got %s", ledger[bidders-1].Amount)
}

func TestService_CancelListing(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel then re-cancel", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)

		require.NoError(t, env.svc.CancelListing(ctx, "sku-a"))

		l, err := env.svc.GetListing(ctx, "sku-a")
		require.NoError(t, err)
		assert.Equal(t, listing.StatusCancelled, l.Status)

		err = env.svc.CancelListing(ctx, "sku-a")
		require.ErrorIs(t, err, errors.ErrAlreadyTerminal)
	})

	t.Run("unknown item", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.svc.CancelListing(ctx, "missing")
		require.ErrorIs(t, err, errors.ErrListingNotFound)
	})

	t.Run("bids survive cancellation", func(t *testing.T) {
		env := newTestEnv(t)
		env.listItem(t, "sku-a", manufactured)
		_, err := env.svc.PlaceBid(ctx, auction.PlaceBidRequest{ItemID: "sku-a", BidderID: env.bidderID})
		require.NoError(t, err)

		require.NoError(t, env.svc.CancelListing(ctx, "sku-a"))

		ledger, err := env.svc.ListBids(ctx, "sku-a")
		require.NoError(t, err)
		assert.Len(t, ledger, 1)
	})
}

func TestService_ListBids_UnknownItem(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.ListBids(context.Background(), "missing")
	require.ErrorIs(t, err, errors.ErrListingNotFound)
}

func ptr[T any](v T) *T { return &v }
