package book

import (
	"sort"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// entry is one resting order slot in a price level's FIFO queue. For
// iceberg orders visible tracks the currently displayed slice; for every
// other type visible always equals the order's remaining quantity.
type entry struct {
	order   *models.Order
	visible int64
}

func newEntry(o *models.Order) *entry {
	visible := o.RemainingQuantity()
	if o.Type == models.Iceberg && o.DisplayQuantity < visible {
		visible = o.DisplayQuantity
	}
	return &entry{order: o, visible: visible}
}

// priceLevel is the FIFO queue of resting entries at one price, with
// running totals kept in sync by the book's write section.
type priceLevel struct {
	price           float64
	entries         []*entry
	totalQuantity   int64 // sum of remaining quantity, hidden size included
	visibleQuantity int64 // sum of displayed slices
}

func (l *priceLevel) append(e *entry) {
	l.entries = append(l.entries, e)
	l.totalQuantity += e.order.RemainingQuantity()
	l.visibleQuantity += e.visible
}

func (l *priceLevel) head() *entry {
	return l.entries[0]
}

func (l *priceLevel) popHead() {
	l.entries[0] = nil
	l.entries = l.entries[1:]
}

// rotateHead moves the head entry to the tail of the queue. Used when an
// iceberg order replenishes its displayed slice: the new slice queues
// behind existing orders at the same price.
func (l *priceLevel) rotateHead() {
	e := l.entries[0]
	copy(l.entries, l.entries[1:])
	l.entries[len(l.entries)-1] = e
}

// remove deletes the entry holding orderID, returning its order or nil.
func (l *priceLevel) remove(orderID string) *models.Order {
	for i, e := range l.entries {
		if e.order.OrderID == orderID {
			l.totalQuantity -= e.order.RemainingQuantity()
			l.visibleQuantity -= e.visible
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e.order
		}
	}
	return nil
}

func (l *priceLevel) isEmpty() bool {
	return len(l.entries) == 0
}

// ladder is one side of the book: price levels kept sorted best-first
// (bids descending, asks ascending).
type ladder struct {
	levels     []*priceLevel
	descending bool
}

func newLadder(descending bool) *ladder {
	return &ladder{descending: descending}
}

// best returns the top-of-book level, or nil when the side is empty.
func (ld *ladder) best() *priceLevel {
	if len(ld.levels) == 0 {
		return nil
	}
	return ld.levels[0]
}

// search returns the index where price belongs in best-first order.
func (ld *ladder) search(price float64) int {
	return sort.Search(len(ld.levels), func(i int) bool {
		if ld.descending {
			return ld.levels[i].price <= price
		}
		return ld.levels[i].price >= price
	})
}

// level returns the level at price, creating and inserting it if absent.
func (ld *ladder) level(price float64) *priceLevel {
	i := ld.search(price)
	if i < len(ld.levels) && ld.levels[i].price == price {
		return ld.levels[i]
	}
	lvl := &priceLevel{price: price}
	ld.levels = append(ld.levels, nil)
	copy(ld.levels[i+1:], ld.levels[i:])
	ld.levels[i] = lvl
	return lvl
}

// lookup returns the existing level at price, or nil.
func (ld *ladder) lookup(price float64) *priceLevel {
	i := ld.search(price)
	if i < len(ld.levels) && ld.levels[i].price == price {
		return ld.levels[i]
	}
	return nil
}

// dropLevel removes the level at price from the ladder.
func (ld *ladder) dropLevel(price float64) {
	i := ld.search(price)
	if i < len(ld.levels) && ld.levels[i].price == price {
		copy(ld.levels[i:], ld.levels[i+1:])
		ld.levels[len(ld.levels)-1] = nil
		ld.levels = ld.levels[:len(ld.levels)-1]
	}
}

func (ld *ladder) isEmpty() bool {
	return len(ld.levels) == 0
}

func (ld *ladder) size() int {
	return len(ld.levels)
}

// marketableQuantity sums the resting quantity reachable by taker,
// walking levels best-first and stopping at the first non-marketable
// price or once need is covered. Hidden iceberg size counts: a large
// taker reaches it through slice replenishment within one matching loop.
func (ld *ladder) marketableQuantity(taker *models.Order, need int64) int64 {
	var total int64
	for _, lvl := range ld.levels {
		if !marketable(taker, lvl.price) {
			break
		}
		total += lvl.totalQuantity
		if total >= need {
			break
		}
	}
	return total
}

// marketable reports whether the taker may trade at the given resting
// price. Market orders always may; every priced type enforces its limit.
func marketable(taker *models.Order, restingPrice float64) bool {
	if taker.Type == models.Market {
		return true
	}
	if taker.Side == models.Buy {
		return restingPrice <= taker.Price
	}
	return restingPrice >= taker.Price
}
