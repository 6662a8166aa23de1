package engine

import (
	"context"
	"sync"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// OrderFuture is the completion handle a submitter receives for each
// order. It resolves exactly once, with either the terminal order state
// or an error, whichever stage finishes the order's processing.
type OrderFuture struct {
	once  sync.Once
	done  chan struct{}
	order *models.Order
	err   error
}

func newOrderFuture() *OrderFuture {
	return &OrderFuture{done: make(chan struct{})}
}

// failedFuture returns a future already resolved with err. Used for
// submissions against a stopped engine.
func failedFuture(err error) *OrderFuture {
	f := newOrderFuture()
	f.fail(err)
	return f
}

func (f *OrderFuture) resolve(order *models.Order) {
	f.once.Do(func() {
		f.order = order
		close(f.done)
	})
}

func (f *OrderFuture) fail(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done returns a channel closed once the future resolves. Callers may
// poll it or select on it instead of blocking in Get.
func (f *OrderFuture) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx is cancelled, returning
// the final order state.
func (f *OrderFuture) Get(ctx context.Context) (*models.Order, error) {
	select {
	case <-f.done:
		return f.order, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryGet returns the result without blocking; ok is false while the
// future is unresolved.
func (f *OrderFuture) TryGet() (order *models.Order, err error, ok bool) {
	select {
	case <-f.done:
		return f.order, f.err, true
	default:
		return nil, nil, false
	}
}
