package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/cache"
)

// cachedGateway decorates a Gateway with a redis read-through cache. Product
// master data changes rarely, so a short TTL removes most catalog round trips
// from the bid hot path. NotFound is never cached; a bad deployment of the
// catalog should not poison lookups for the TTL.
type cachedGateway struct {
	next   Gateway
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGateway wraps next with a product cache.
func NewCachedGateway(next Gateway, c cache.Cache, ttl time.Duration, logger *zap.Logger) Gateway {
	return &cachedGateway{next: next, cache: c, ttl: ttl, logger: logger}
}

func (g *cachedGateway) GetProduct(ctx context.Context, itemID string) (*Product, error) {
	key := "catalog:product:" + itemID

	if raw, err := g.cache.Get(ctx, key); err == nil {
		var p Product
		if err := p.UnmarshalBinary([]byte(raw)); err == nil {
			return &p, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		_ = g.cache.Delete(ctx, key)
	} else {
		var miss cache.ErrKeyNotFound
		if !errors.As(err, &miss) {
			g.logger.Warn("product cache read failed", zap.String("item_id", itemID), zap.Error(err))
		}
	}

	p, err := g.next.GetProduct(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, p, g.ttl); err != nil {
		g.logger.Warn("product cache write failed", zap.String("item_id", itemID), zap.Error(err))
	}
	return p, nil
}

// Invalidate removes one product from the cache.
func (g *cachedGateway) Invalidate(ctx context.Context, itemID string) {
	_ = g.cache.Delete(ctx, "catalog:product:"+itemID)
}
