package repository

import (
	"context"
	"fmt"

	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/database"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

// reportRepository persists settlement report rows.
type reportRepository struct {
	db *database.Pool
}

// NewReportRepository creates the PostgreSQL settlement report store.
func NewReportRepository(db *database.Pool) *reportRepository {
	return &reportRepository{db: db}
}

var _ settlement.ReportRepository = (*reportRepository)(nil)

func (r *reportRepository) SaveReport(ctx context.Context, report settlement.Report) error {
	var bestBid any
	if report.BestBid != nil {
		bestBid = report.BestBid.Amount().StringFixed(2)
	}
	_, err := r.db.Pgx().Exec(ctx, `
		INSERT INTO settlement_reports (item_id, final_status, best_bid, settled_at)
		VALUES ($1, $2, $3, $4)
	`, report.ItemID, report.FinalStatus, bestBid, report.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to save settlement report: %w", err)
	}
	return nil
}
