package rest

import (
	"log/slog"
	"net/http"

	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/config"
)

// NewRouter wires all routes and the standard middleware chain.
func NewRouter(h *Handler, health *HealthHandler, cfg *config.ServerConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/listings", h.handleCreateListing)
	mux.HandleFunc("GET /api/v1/listings/{itemID}", h.handleGetListing)
	mux.HandleFunc("DELETE /api/v1/listings/{itemID}", h.handleCancelListing)
	mux.HandleFunc("POST /api/v1/listings/{itemID}/bids", h.handlePlaceBid)
	mux.HandleFunc("GET /api/v1/listings/{itemID}/bids", h.handleListBids)
	mux.HandleFunc("POST /api/v1/settlements", h.handleSettle)
	mux.HandleFunc("GET /api/v1/history", h.handleHistory)

	mux.HandleFunc("GET /healthz", health.handleHealth)

	return chain(mux,
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		rateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
	)
}
