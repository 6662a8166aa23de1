package engine

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaldrVivaldelli/thoth-trading/internal/book"
	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/metrics"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// ErrEngineNotRunning is returned through the completion handle when an
// order is submitted against a stopped engine. It is distinct from a
// policy rejection, which resolves normally with a REJECTED order.
var ErrEngineNotRunning = errors.New("engine: not running")

// Engine is the trading engine façade: lifecycle control plus the public
// submit/cancel/query surface. It owns the processing pipeline and the
// book registry.
type Engine struct {
	cfg   *config.Config
	books *book.Registry

	validator OrderValidator
	risk      RiskChecker

	pipeline *pipeline
	running  atomic.Bool

	// mu serializes Start/Stop against in-flight submissions: Stop waits
	// for submitters holding the read side before closing the ingress.
	mu sync.RWMutex

	onTrade func(trade *models.Trade)
	onOrder func(order *models.Order)
	metrics *metrics.Metrics
}

// New creates an engine with the default validator and risk manager
// built from cfg. The engine is stopped until Start is called.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:       cfg,
		books:     book.NewRegistry(),
		validator: NewValidator(cfg),
		risk:      NewRiskManager(cfg),
	}
}

// SetValidator replaces the validation stage. Call before Start.
func (e *Engine) SetValidator(v OrderValidator) {
	e.validator = v
}

// SetRiskChecker replaces the risk stage. Call before Start.
func (e *Engine) SetRiskChecker(r RiskChecker) {
	e.risk = r
}

// SetTradeCallback registers a callback invoked once per trade, in match
// order, from the match stage goroutine. Call before Start.
func (e *Engine) SetTradeCallback(cb func(trade *models.Trade)) {
	e.onTrade = cb
}

// SetOrderCallback registers a callback invoked once per order when its
// processing completes (filled, rested, or cancelled). Call before Start.
func (e *Engine) SetOrderCallback(cb func(order *models.Order)) {
	e.onOrder = cb
}

// SetMetrics attaches application metrics. Call before Start.
func (e *Engine) SetMetrics(m *metrics.Metrics) {
	e.metrics = m
}

// Start activates ingestion and pipeline execution. A second Start is a
// no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.CompareAndSwap(false, true) {
		return
	}

	log.Printf("engine: starting (queue size %d)", e.cfg.QueueSize)
	p := newPipeline(e.cfg.QueueSize, e.books, e.validator, e.risk)
	p.onTrade = e.handleTrade
	p.onComplete = e.handleComplete
	p.onReject = e.handleReject
	p.start()
	e.pipeline = p
}

// Stop deactivates ingestion, drains the pipeline and resolves every
// in-flight order. A second Stop is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.CompareAndSwap(true, false) {
		return
	}

	log.Printf("engine: stopping")
	e.pipeline.stop()
	e.pipeline = nil
}

// IsRunning reports whether the engine accepts submissions.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// SubmitOrder enqueues the order and returns its completion handle. The
// handle resolves exactly once with the terminal order state. Against a
// stopped engine the handle fails immediately with ErrEngineNotRunning.
func (e *Engine) SubmitOrder(order *models.Order) *OrderFuture {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.running.Load() {
		return failedFuture(ErrEngineNotRunning)
	}

	if e.metrics != nil {
		e.metrics.OrdersSubmitted.Inc()
		e.metrics.PipelineDepth.Set(float64(e.pipeline.depth()))
	}

	f := newOrderFuture()
	e.pipeline.submit(&task{order: order, future: f})
	return f
}

// CancelOrder removes a resting order from its book. Fire-and-forget and
// idempotent: an unknown symbol or an order already filled or cancelled
// is a no-op.
func (e *Engine) CancelOrder(symbol, orderID string) {
	b, ok := e.books.Lookup(symbol)
	if !ok {
		return
	}
	if cancelled, ok := b.CancelOrder(orderID); ok {
		log.Printf("engine: cancelled order %s on %s (remaining %d)",
			cancelled.OrderID, symbol, cancelled.RemainingQuantity())
		if e.onOrder != nil {
			e.onOrder(cancelled)
		}
		if e.metrics != nil {
			e.metrics.OrdersCancelled.Inc()
		}
	}
}

// Snapshot returns a consistent copy of the symbol's book, or false when
// no book exists for the symbol yet.
func (e *Engine) Snapshot(symbol string) (*book.Snapshot, bool) {
	b, ok := e.books.Lookup(symbol)
	if !ok {
		return nil, false
	}
	return b.Snapshot(), true
}

// Statistics returns top-of-book statistics for the symbol. It is only
// served while the engine runs, and returns false for unknown symbols.
func (e *Engine) Statistics(symbol string) (book.Statistics, bool) {
	if !e.running.Load() {
		log.Printf("engine: statistics requested while stopped")
		return book.Statistics{}, false
	}
	b, ok := e.books.Lookup(symbol)
	if !ok {
		return book.Statistics{}, false
	}
	return b.Statistics(), true
}

// RestingOrder returns a resting order by id, if present in the symbol's
// book.
func (e *Engine) RestingOrder(symbol, orderID string) (*models.Order, bool) {
	b, ok := e.books.Lookup(symbol)
	if !ok {
		return nil, false
	}
	return b.Order(orderID)
}

// Symbols lists every symbol with a live book.
func (e *Engine) Symbols() []string {
	return e.books.Symbols()
}

func (e *Engine) handleTrade(trade *models.Trade) {
	if e.metrics != nil {
		e.metrics.TradesTotal.Inc()
		e.metrics.TradeVolume.WithLabelValues(trade.Symbol).Add(float64(trade.Quantity))
		e.metrics.TradeValue.WithLabelValues(trade.Symbol).Add(trade.Total())
	}
	if e.onTrade != nil {
		e.onTrade(trade)
	}
}

func (e *Engine) handleComplete(order *models.Order, resting bool, elapsed time.Duration) {
	if e.onOrder != nil {
		e.onOrder(order)
	}
	if e.metrics == nil {
		return
	}
	e.metrics.ProcessingTime.Observe(elapsed.Seconds())
	switch {
	case order.Status == models.StatusFilled:
		e.metrics.OrdersFilled.Inc()
	case resting:
		e.metrics.OrdersResting.Inc()
	case order.Status == models.StatusCancelled:
		e.metrics.OrdersCancelled.Inc()
	}

	if b, ok := e.books.Lookup(order.Symbol); ok {
		e.metrics.BookOrderCount.WithLabelValues(order.Symbol).Set(float64(b.OrderCount()))
		if price, _, ok := b.BestBid(); ok {
			e.metrics.BookBestBid.WithLabelValues(order.Symbol).Set(price)
		}
		if price, _, ok := b.BestAsk(); ok {
			e.metrics.BookBestAsk.WithLabelValues(order.Symbol).Set(price)
		}
	}
}

func (e *Engine) handleReject(stage string) {
	if e.metrics != nil {
		e.metrics.OrdersRejected.Inc()
		e.metrics.StageRejections.WithLabelValues(stage).Inc()
	}
}
