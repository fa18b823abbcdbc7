package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

// pgGateway reads product master data from the products table.
type pgGateway struct {
	pool *pgxpool.Pool
}

// NewPostgresGateway creates a Gateway backed by PostgreSQL.
func NewPostgresGateway(pool *pgxpool.Pool) Gateway {
	return &pgGateway{pool: pool}
}

func (g *pgGateway) GetProduct(ctx context.Context, itemID string) (*Product, error) {
	query := `
		SELECT item_id, list_price, manufactured, sale_ends_at, discontinued_at
		FROM products
		WHERE item_id = $1
	`

	var (
		p              Product
		listPrice      string
		saleEndsAt     *time.Time
		discontinuedAt *time.Time
	)
	err := g.pool.QueryRow(ctx, query, itemID).Scan(
		&p.ItemID, &listPrice, &p.Manufactured, &saleEndsAt, &discontinuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrItemNotFound
		}
		return nil, apperrors.NewExternalError("catalog", fmt.Sprintf("product lookup failed: %v", err)).WithCause(err)
	}

	price, err := values.NewMoneyFromString(listPrice, values.USD)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid list price in catalog").WithCause(err)
	}
	p.ListPrice = price
	p.SaleEndsAt = saleEndsAt
	p.DiscontinuedAt = discontinuedAt
	return &p, nil
}
