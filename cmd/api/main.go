package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/auctionhouse/dependable-auction-backend/internal/api/rest"
	"github.com/auctionhouse/dependable-auction-backend/internal/clock"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/catalog"
	"github.com/auctionhouse/dependable-auction-backend/internal/gateway/directory"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/cache"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/config"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/database"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/repository"
	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/telemetry"
	"github.com/auctionhouse/dependable-auction-backend/internal/metrics"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/auction"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/history"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create infrastructure logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx := context.Background()

	pool, err := database.NewPool(ctx, &cfg.Database, zapLogger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	clk := clock.System()

	listingRepo := repository.NewListingRepository(pool)
	bidRepo := repository.NewBidRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	var cat catalog.Gateway = catalog.NewPostgresGateway(pool.Pgx())
	dir := directory.NewPostgresDirectory(pool.Pgx())

	healthChecks := []rest.DependencyCheck{
		{Name: "database", Check: pool.HealthCheck},
	}

	if cfg.Redis.URL != "" {
		productCache, err := cache.NewRedisCache(&cfg.Redis, zapLogger)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer func() { _ = productCache.Close() }()
		cat = catalog.NewCachedGateway(cat, productCache, cfg.Redis.ProductTTL, zapLogger)
		healthChecks = append(healthChecks, rest.DependencyCheck{
			Name: "redis", Check: productCache.HealthCheck,
		})
	}

	registry, err := metrics.NewRegistry()
	if err != nil {
		log.Fatalf("failed to create metrics registry: %v", err)
	}

	auctionCfg := auction.Config{
		Season:                 cfg.Auction.Season(),
		Increment:              cfg.Auction.Increment(),
		DefaultListingDuration: cfg.Auction.DefaultListingDuration,
		Currency:               cfg.Auction.Currency,
	}

	auctionSvc := auction.NewService(listingRepo, bidRepo, cat, dir, clk, auctionCfg, logger, registry)
	settlementSvc := settlement.NewService(listingRepo, bidRepo, cat, reportRepo, clk, logger, registry)
	historySvc := history.NewService(bidRepo)

	runner := settlement.NewRunner(settlementSvc, cfg.Auction.SettlementInterval, logger)
	runner.Start(ctx)
	defer runner.Stop()

	handler := rest.NewHandler(auctionSvc, settlementSvc, historySvc, logger, cfg.Auction.Currency)
	healthHandler := rest.NewHealthHandler(healthChecks...)

	router := rest.NewRouter(handler, healthHandler, &cfg.Server, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler())
	mux.Handle("/", instrumentHTTP(router))

	server := rest.NewServer(&cfg.Server, mux, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
