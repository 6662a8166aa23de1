package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

func TestOrderFuture_ResolveOnce(t *testing.T) {
	f := newOrderFuture()

	first := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 10, TraderID: "T1",
	})
	second := first.WithStatus(models.StatusRejected)

	f.resolve(first)
	f.resolve(second)
	f.fail(errors.New("too late"))

	o, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, o, "only the first resolution counts")
}

func TestOrderFuture_GetHonorsContext(t *testing.T) {
	f := newOrderFuture()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrderFuture_TryGet(t *testing.T) {
	f := newOrderFuture()

	_, _, ok := f.TryGet()
	assert.False(t, ok)

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 10, TraderID: "T1",
	})
	f.resolve(o)

	got, err, ok := f.TryGet()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Same(t, o, got)
}

func TestOrderFuture_DoneUnblocksWaiters(t *testing.T) {
	f := newOrderFuture()

	const waiters = 10
	var wg sync.WaitGroup
	results := make([]*models.Order, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-f.Done()
			results[i], _, _ = f.TryGet()
		}(i)
	}

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 10, TraderID: "T1",
	})
	f.resolve(o)
	wg.Wait()

	for i, got := range results {
		if got != o {
			t.Fatalf("waiter %d saw %v", i, got)
		}
	}
}

func TestFailedFuture(t *testing.T) {
	sentinel := errors.New("boom")
	f := failedFuture(sentinel)

	_, err, ok := f.TryGet()
	require.True(t, ok, "failed future resolves immediately")
	assert.ErrorIs(t, err, sentinel)
}
