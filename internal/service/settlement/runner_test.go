package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionhouse/dependable-auction-backend/internal/domain/listing"
	"github.com/auctionhouse/dependable-auction-backend/internal/service/settlement"
)

func TestRunner_SettlesOnInterval(t *testing.T) {
	env := newTestEnv(t)
	env.addListing(t, "sku-a", deadline)

	runner := settlement.NewRunner(env.svc, 10*time.Millisecond, nil)
	runner.Start(context.Background())
	defer runner.Stop()

	require.Eventually(t, func() bool {
		l, err := env.store.GetByItemID(context.Background(), "sku-a")
		return err == nil && l.Status == listing.StatusSold
	}, time.Second, 10*time.Millisecond)
}

func TestRunner_StopWaitsForLoopExit(t *testing.T) {
	env := newTestEnv(t)

	runner := settlement.NewRunner(env.svc, time.Hour, nil)
	runner.Start(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestRunner_ContextCancellationStopsLoop(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	runner := settlement.NewRunner(env.svc, time.Hour, nil)
	runner.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool {
		select {
		case <-runner.Done():
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}
