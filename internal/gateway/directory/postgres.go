package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/auctionhouse/dependable-auction-backend/internal/domain/errors"
)

type pgDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory creates a Directory backed by the customers table.
func NewPostgresDirectory(pool *pgxpool.Pool) Directory {
	return &pgDirectory{pool: pool}
}

func (d *pgDirectory) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`, customerID,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewExternalError("directory", fmt.Sprintf("customer lookup failed: %v", err)).WithCause(err)
	}
	return exists, nil
}
