package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auction  AuctionConfig  `koanf:"auction"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	HealthTimeout   time.Duration `koanf:"health_timeout"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	ProductTTL   time.Duration `koanf:"product_ttl"`
}

// AuctionConfig holds the business parameters of the bidding engine. The
// season window bounds both bid acceptance and explicit listing expiries;
// it is configuration, never a hardcoded calendar date.
type AuctionConfig struct {
	SeasonStart string `koanf:"season_start"`
	SeasonEnd   string `koanf:"season_end"`

	DefaultListingDuration time.Duration `koanf:"default_listing_duration"`
	MinIncrement           string        `koanf:"min_increment"`
	Currency               string        `koanf:"currency"`

	SettlementInterval time.Duration `koanf:"settlement_interval"`

	season Season
}

// Season is the parsed auction season window, inclusive on both ends.
type Season struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the season window.
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// Season returns the parsed window. Valid after Load.
func (a AuctionConfig) Season() Season {
	return a.season
}

// Increment returns the minimum bid increment as Money.
func (a AuctionConfig) Increment() values.Money {
	m, err := values.NewMoneyFromString(a.MinIncrement, a.Currency)
	if err != nil {
		// Load validated the string; reaching here means the config was
		// mutated after load.
		panic(fmt.Sprintf("invalid min_increment %q: %v", a.MinIncrement, err))
	}
	return m
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
		Database: DatabaseConfig{
			MaxConns:        25,
			MinConns:        5,
			ConnMaxLifetime: 5 * time.Minute,
			HealthTimeout:   5 * time.Second,
		},
		Redis: RedisConfig{
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			ProductTTL:   10 * time.Minute,
		},
		Auction: AuctionConfig{
			DefaultListingDuration: 7 * 24 * time.Hour,
			MinIncrement:           "0.05",
			Currency:               values.USD,
			SettlementInterval:     time.Minute,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = "configs/config.yaml"
	}
	// Config file is optional; env vars alone can configure a deployment.
	_ = k.Load(file.Provider(path), yaml.Parser())

	if err := k.Load(env.Provider("AUCTION_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AUCTION_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Auction.parse(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (a *AuctionConfig) parse() error {
	if a.SeasonStart == "" || a.SeasonEnd == "" {
		return fmt.Errorf("auction.season_start and auction.season_end are required")
	}
	start, err := time.Parse(time.RFC3339, a.SeasonStart)
	if err != nil {
		return fmt.Errorf("invalid auction.season_start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, a.SeasonEnd)
	if err != nil {
		return fmt.Errorf("invalid auction.season_end: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("auction season must end after it starts")
	}
	if _, err := decimal.NewFromString(a.MinIncrement); err != nil {
		return fmt.Errorf("invalid auction.min_increment: %w", err)
	}
	a.season = Season{Start: start.UTC(), End: end.UTC()}
	return nil
}
