package book

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// Book is the matching core for one symbol: a bid ladder, an ask ladder
// and an id index for O(1) cancellation lookup.
//
// THREAD SAFETY:
//   - All mutation (SubmitOrder, CancelOrder) happens under the exclusive
//     side of mu; the write section is the sole mutator, so submit and
//     cancel are mutually exclusive per symbol and fully concurrent
//     across symbols.
//   - Reads (Snapshot, Statistics, BestBid/BestAsk) run under the shared
//     side of mu, so they never observe a half-applied matching loop.
//   - version counts committed writes; snapshots carry it so readers can
//     cheaply detect whether the book changed between two reads.
type Book struct {
	symbol string

	mu      sync.RWMutex
	version atomic.Uint64

	bids *ladder
	asks *ladder

	// orderID -> (side, price) for cancellation without a ladder scan.
	ordersByID map[string]orderRef

	lastPrice    float64
	lastQuantity int64
}

type orderRef struct {
	side  models.OrderSide
	price float64
}

// NewBook creates an empty book for symbol.
func NewBook(symbol string) *Book {
	return &Book{
		symbol:     symbol,
		bids:       newLadder(true),
		asks:       newLadder(false),
		ordersByID: make(map[string]orderRef),
	}
}

// Symbol returns the instrument this book trades.
func (b *Book) Symbol() string {
	return b.symbol
}

// SubmitOrder runs the incoming order through the matching loop and
// applies the rest policy to any remainder. It returns the trades
// produced in match order, the final state of the incoming order, and
// whether that remainder now rests in the book. The whole call commits
// atomically: either all of the loop's effects are visible or none are.
func (b *Book) SubmitOrder(order *models.Order) ([]*models.Trade, *models.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.version.Add(1)

	// FOK is all-or-nothing: commit no fill at all unless the opposing
	// ladder can absorb the full quantity at marketable prices.
	if order.Type == models.FOK {
		available := b.opposing(order.Side).marketableQuantity(order, order.Quantity)
		if available < order.Quantity {
			return nil, order.WithStatus(models.StatusCancelled), false
		}
	}

	trades, final := b.match(order)

	if final.RemainingQuantity() == 0 {
		return trades, final, false
	}

	if b.shouldRest(final) {
		b.addToBook(final)
		return trades, final, true
	}

	// Unfilled remainder that never rests: market or IOC liquidity ran
	// out. A completely unfilled taker ends CANCELLED; a partial fill
	// keeps PARTIALLY_FILLED.
	if final.FilledQuantity == 0 {
		final = final.WithStatus(models.StatusCancelled)
	}
	return trades, final, false
}

// match is the price-time priority loop: best opposing price first, FIFO
// within a level, trades always at the maker's resting price.
func (b *Book) match(taker *models.Order) ([]*models.Trade, *models.Order) {
	opp := b.opposing(taker.Side)
	current := taker
	var trades []*models.Trade

	for current.RemainingQuantity() > 0 {
		lvl := opp.best()
		if lvl == nil || !marketable(taker, lvl.price) {
			break
		}

		e := lvl.head()
		maker := e.order

		qty := current.RemainingQuantity()
		if maker.RemainingQuantity() < qty {
			qty = maker.RemainingQuantity()
		}
		if e.visible < qty {
			qty = e.visible
		}

		trade, err := models.NewTrade(maker, current, lvl.price, qty)
		if err != nil {
			// The loop caps qty at both remainders, so this indicates a
			// corrupted level; stop matching rather than emit a bad trade.
			log.Printf("book %s: dropping match against %s: %v", b.symbol, maker.OrderID, err)
			break
		}
		trades = append(trades, trade)

		updatedMaker := maker.WithFill(qty)
		current = current.WithFill(qty)

		e.visible -= qty
		lvl.totalQuantity -= qty
		lvl.visibleQuantity -= qty

		if updatedMaker.IsComplete() {
			lvl.popHead()
			delete(b.ordersByID, updatedMaker.OrderID)
			if lvl.isEmpty() {
				opp.dropLevel(lvl.price)
			}
		} else {
			e.order = updatedMaker
			if e.visible == 0 {
				// Iceberg slice exhausted: replenish and requeue behind
				// everything already resting at this price.
				e.visible = updatedMaker.RemainingQuantity()
				if updatedMaker.DisplayQuantity < e.visible {
					e.visible = updatedMaker.DisplayQuantity
				}
				lvl.visibleQuantity += e.visible
				lvl.rotateHead()
			}
		}

		b.lastPrice = trade.Price
		b.lastQuantity = trade.Quantity
	}

	return trades, current
}

// shouldRest applies the order-type rest policy to an unfilled remainder.
// FOK never reaches this point with a fill (the pre-check rejects short
// liquidity before any match commits).
func (b *Book) shouldRest(order *models.Order) bool {
	switch order.Type {
	case models.Market, models.IOC, models.FOK:
		return false
	default:
		return true
	}
}

func (b *Book) addToBook(order *models.Order) {
	side := b.bids
	if order.Side == models.Sell {
		side = b.asks
	}
	side.level(order.Price).append(newEntry(order))
	b.ordersByID[order.OrderID] = orderRef{side: order.Side, price: order.Price}
}

func (b *Book) opposing(side models.OrderSide) *ladder {
	if side == models.Buy {
		return b.asks
	}
	return b.bids
}

func (b *Book) own(side models.OrderSide) *ladder {
	if side == models.Buy {
		return b.bids
	}
	return b.asks
}

// CancelOrder removes the resting order with the given id in one atomic
// step, dropping its level if now empty. Unknown ids (already filled or
// cancelled) are a no-op returning false.
func (b *Book) CancelOrder(orderID string) (*models.Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ref, ok := b.ordersByID[orderID]
	if !ok {
		return nil, false
	}
	delete(b.ordersByID, orderID)

	side := b.own(ref.side)
	lvl := side.lookup(ref.price)
	if lvl == nil {
		return nil, false
	}
	order := lvl.remove(orderID)
	if order == nil {
		return nil, false
	}
	if lvl.isEmpty() {
		side.dropLevel(ref.price)
	}
	b.version.Add(1)
	return order.WithStatus(models.StatusCancelled), true
}

// Order returns the resting order with the given id, if any.
func (b *Book) Order(orderID string) (*models.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ref, ok := b.ordersByID[orderID]
	if !ok {
		return nil, false
	}
	lvl := b.own(ref.side).lookup(ref.price)
	if lvl == nil {
		return nil, false
	}
	for _, e := range lvl.entries {
		if e.order.OrderID == orderID {
			return e.order, true
		}
	}
	return nil, false
}

// Snapshot copies every price level of both ladders plus the last-trade
// state at a single consistent instant. Level quantity is the displayed
// size (iceberg hidden quantity is excluded).
func (b *Book) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		Symbol:       b.symbol,
		Bids:         copyLevels(b.bids),
		Asks:         copyLevels(b.asks),
		LastPrice:    b.lastPrice,
		LastQuantity: b.lastQuantity,
		Version:      b.version.Load(),
	}
}

func copyLevels(ld *ladder) []PriceLevel {
	out := make([]PriceLevel, 0, len(ld.levels))
	for _, lvl := range ld.levels {
		out = append(out, PriceLevel{
			Price:      lvl.price,
			Quantity:   lvl.visibleQuantity,
			OrderCount: len(lvl.entries),
		})
	}
	return out
}

// Statistics summarizes the book at a single consistent instant.
func (b *Book) Statistics() Statistics {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var bestBid, bestAsk float64
	if lvl := b.bids.best(); lvl != nil {
		bestBid = lvl.price
	}
	if lvl := b.asks.best(); lvl != nil {
		bestAsk = lvl.price
	}
	return Statistics{
		Symbol:       b.symbol,
		BidLevels:    b.bids.size(),
		AskLevels:    b.asks.size(),
		BestBid:      bestBid,
		BestAsk:      bestAsk,
		LastPrice:    b.lastPrice,
		LastQuantity: b.lastQuantity,
	}
}

// BestBid returns the top bid price and its displayed quantity.
func (b *Book) BestBid() (price float64, quantity int64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lvl := b.bids.best()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.price, lvl.visibleQuantity, true
}

// BestAsk returns the top ask price and its displayed quantity.
func (b *Book) BestAsk() (price float64, quantity int64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	lvl := b.asks.best()
	if lvl == nil {
		return 0, 0, false
	}
	return lvl.price, lvl.visibleQuantity, true
}

// OrderCount returns the number of resting orders across both ladders.
func (b *Book) OrderCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ordersByID)
}

// Version returns the committed write count, for cheap change detection
// between two reads.
func (b *Book) Version() uint64 {
	return b.version.Load()
}
