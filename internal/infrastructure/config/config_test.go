package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/values"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
auction:
  season_start: "2026-06-01T00:00:00Z"
  season_end: "2026-09-30T23:59:59Z"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// defaults survive a minimal file
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.Auction.DefaultListingDuration)
	assert.Equal(t, time.Minute, cfg.Auction.SettlementInterval)
	assert.True(t, cfg.Auction.Increment().Equal(values.MustMoney("0.05", values.USD)))

	season := cfg.Auction.Season()
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), season.Start)
	assert.Equal(t, time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC), season.End)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
server:
  port: 9090
auction:
  season_start: "2026-06-01T00:00:00Z"
  season_end: "2026-09-30T23:59:59Z"
  min_increment: "0.10"
  settlement_interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Auction.SettlementInterval)
	assert.True(t, cfg.Auction.Increment().Equal(values.MustMoney("0.10", values.USD)))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auction:
  season_start: "2026-06-01T00:00:00Z"
  season_end: "2026-09-30T23:59:59Z"
`)
	t.Setenv("AUCTION_ENVIRONMENT", "staging")
	t.Setenv("AUCTION_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing season",
			content: "log_level: info\n",
		},
		{
			name: "malformed season start",
			content: `
auction:
  season_start: "June 1st"
  season_end: "2026-09-30T23:59:59Z"
`,
		},
		{
			name: "season ends before it starts",
			content: `
auction:
  season_start: "2026-09-30T00:00:00Z"
  season_end: "2026-06-01T00:00:00Z"
`,
		},
		{
			name: "unparseable increment",
			content: `
auction:
  season_start: "2026-06-01T00:00:00Z"
  season_end: "2026-09-30T23:59:59Z"
  min_increment: "a nickel"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSeason_Contains(t *testing.T) {
	s := Season{
		Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC),
	}

	assert.True(t, s.Contains(s.Start))
	assert.True(t, s.Contains(s.End))
	assert.True(t, s.Contains(s.Start.Add(time.Hour)))
	assert.False(t, s.Contains(s.Start.Add(-time.Second)))
	assert.False(t, s.Contains(s.End.Add(time.Second)))
}
