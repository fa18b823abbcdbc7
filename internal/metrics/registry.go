package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

// Registry holds the domain metrics for the auction engine. It satisfies the
// MetricsCollector interfaces of the bidding and settlement services.
type Registry struct {
	meter metric.Meter

	BidsAccepted      metric.Int64Counter
	BidsRejected      metric.Int64Counter
	BidAmount         metric.Float64Histogram
	SettlementPasses  metric.Int64Counter
	ListingsSettled   metric.Int64Counter
	ListingsScanned   metric.Int64Counter
}

// NewRegistry creates the metric instruments on the global meter provider.
func NewRegistry() (*Registry, error) {
	meter := otel.Meter("auction-backend")
	r := &Registry{meter: meter}

	var err error
	if r.BidsAccepted, err = meter.Int64Counter("auction.bids.accepted",
		metric.WithDescription("Accepted bids")); err != nil {
		return nil, err
	}
	if r.BidsRejected, err = meter.Int64Counter("auction.bids.rejected",
		metric.WithDescription("Rejected bids by error code")); err != nil {
		return nil, err
	}
	if r.BidAmount, err = meter.Float64Histogram("auction.bids.amount",
		metric.WithDescription("Accepted bid amounts")); err != nil {
		return nil, err
	}
	if r.SettlementPasses, err = meter.Int64Counter("auction.settlement.passes",
		metric.WithDescription("Settlement passes run")); err != nil {
		return nil, err
	}
	if r.ListingsSettled, err = meter.Int64Counter("auction.settlement.settled",
		metric.WithDescription("Listings transitioned by settlement")); err != nil {
		return nil, err
	}
	if r.ListingsScanned, err = meter.Int64Counter("auction.settlement.scanned",
		metric.WithDescription("Expired listings scanned by settlement")); err != nil {
		return nil, err
	}
	return r, nil
}

// RecordBidAccepted counts an accepted bid and its amount.
func (r *Registry) RecordBidAccepted(ctx context.Context, amount values.Money) {
	r.BidsAccepted.Add(ctx, 1)
	f, _ := amount.Amount().Float64()
	r.BidAmount.Record(ctx, f)
}

// RecordBidRejected counts a rejection by stable error code.
func (r *Registry) RecordBidRejected(ctx context.Context, code string) {
	r.BidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// RecordSettlement counts one settlement pass.
func (r *Registry) RecordSettlement(ctx context.Context, settled, scanned int) {
	r.SettlementPasses.Add(ctx, 1)
	r.ListingsSettled.Add(ctx, int64(settled))
	r.ListingsScanned.Add(ctx, int64(scanned))
}
