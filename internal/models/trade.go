package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade is the immutable record of a single match between a resting
// (maker) order and an incoming (taker) order. Price is always the
// maker's resting price. A trade is an append-only fact; the only
// post-creation annotation is an external exchange id via WithExchangeID.
type Trade struct {
	TradeID      string    `json:"trade_id"`
	Symbol       string    `json:"symbol"`
	MakerOrder   *Order    `json:"maker_order"`
	TakerOrder   *Order    `json:"taker_order"`
	Price        float64   `json:"price"`
	Quantity     int64     `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
	ExchangeID   string    `json:"exchange_id,omitempty"`
	IsBuyerMaker bool      `json:"is_buyer_maker"`
}

// NewTrade constructs a trade between maker and taker at the given price
// and quantity, validating coherence between the two orders. Quantity must
// not exceed either side's remaining quantity at the instant of
// construction.
func NewTrade(maker, taker *Order, price float64, quantity int64) (*Trade, error) {
	if maker == nil {
		return nil, errors.New("trade: maker order cannot be nil")
	}
	if taker == nil {
		return nil, errors.New("trade: taker order cannot be nil")
	}
	if price <= 0 {
		return nil, errors.New("trade: price must be positive")
	}
	if quantity <= 0 {
		return nil, errors.New("trade: quantity must be positive")
	}
	if maker.Symbol != taker.Symbol {
		return nil, fmt.Errorf("trade: symbol mismatch %s vs %s", maker.Symbol, taker.Symbol)
	}
	if maker.Side == taker.Side {
		return nil, errors.New("trade: maker and taker must be on opposite sides")
	}
	if quantity > maker.RemainingQuantity() || quantity > taker.RemainingQuantity() {
		return nil, errors.New("trade: quantity exceeds remaining order quantity")
	}

	return &Trade{
		TradeID:      uuid.New().String(),
		Symbol:       maker.Symbol,
		MakerOrder:   maker,
		TakerOrder:   taker,
		Price:        price,
		Quantity:     quantity,
		Timestamp:    time.Now(),
		IsBuyerMaker: maker.Side == Buy,
	}, nil
}

// WithExchangeID returns a copy of the trade annotated with an external
// venue identifier.
func (t *Trade) WithExchangeID(exchangeID string) *Trade {
	next := *t
	next.ExchangeID = exchangeID
	return &next
}

// Total returns the notional value of the trade.
func (t *Trade) Total() float64 {
	return t.Price * float64(t.Quantity)
}

// IsBuyerTaker reports whether the aggressor was the buyer.
func (t *Trade) IsBuyerTaker() bool {
	return !t.IsBuyerMaker
}

// BuyOrder returns whichever side of the trade was buying.
func (t *Trade) BuyOrder() *Order {
	if t.IsBuyerMaker {
		return t.MakerOrder
	}
	return t.TakerOrder
}

// SellOrder returns whichever side of the trade was selling.
func (t *Trade) SellOrder() *Order {
	if t.IsBuyerMaker {
		return t.TakerOrder
	}
	return t.MakerOrder
}

// BuyOrderID returns the id of the buying order.
func (t *Trade) BuyOrderID() string { return t.BuyOrder().OrderID }

// SellOrderID returns the id of the selling order.
func (t *Trade) SellOrderID() string { return t.SellOrder().OrderID }

// BuyTraderID returns the trader behind the buying order.
func (t *Trade) BuyTraderID() string { return t.BuyOrder().TraderID }

// SellTraderID returns the trader behind the selling order.
func (t *Trade) SellTraderID() string { return t.SellOrder().TraderID }

func (t *Trade) String() string {
	return fmt.Sprintf("Trade{id=%s, symbol=%s, price=%.2f, qty=%d, maker=%s, taker=%s}",
		t.TradeID, t.Symbol, t.Price, t.Quantity, t.MakerOrder.OrderID, t.TakerOrder.OrderID)
}
