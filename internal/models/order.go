package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderType identifies the execution semantics of an order.
type OrderType string

const (
	Market    OrderType = "MARKET"
	Limit     OrderType = "LIMIT"
	Stop      OrderType = "STOP"
	StopLimit OrderType = "STOP_LIMIT"
	IOC       OrderType = "IOC"
	FOK       OrderType = "FOK"
	Iceberg   OrderType = "ICEBERG"
)

// RequiresPrice reports whether orders of this type must carry a limit price.
func (t OrderType) RequiresPrice() bool {
	return t != Market
}

// RequiresStopPrice reports whether orders of this type must carry a stop price.
func (t OrderType) RequiresStopPrice() bool {
	return t == Stop || t == StopLimit
}

// IsValid reports whether t is a known order type.
func (t OrderType) IsValid() bool {
	switch t {
	case Market, Limit, Stop, StopLimit, IOC, FOK, Iceberg:
		return true
	}
	return false
}

// OrderSide is the direction of an order.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// IsValid reports whether s is a known side.
func (s OrderSide) IsValid() bool {
	return s == Buy || s == Sell
}

// OrderStatus is the lifecycle state of an order.
//
// STATE MACHINE:
//
//	NEW -> VALIDATED -> PARTIALLY_FILLED -> FILLED
//	any non-final state -> REJECTED | CANCELLED | EXPIRED
//
// FILLED, REJECTED, CANCELLED and EXPIRED are terminal; no transition
// ever leaves them.
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusValidated       OrderStatus = "VALIDATED"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusCancelled       OrderStatus = "CANCELLED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// IsFinal reports whether the status is terminal.
func (s OrderStatus) IsFinal() bool {
	switch s {
	case StatusFilled, StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Order is an immutable order value. Every state change (fill, status
// update) produces a new Order; nothing mutates one in place, so the book
// never hands out a reference anyone can alias and write through.
type Order struct {
	OrderID         string      `json:"order_id"`
	ClientOrderID   string      `json:"client_order_id,omitempty"`
	Symbol          string      `json:"symbol"`
	Type            OrderType   `json:"type"`
	Side            OrderSide   `json:"side"`
	Price           float64     `json:"price"`
	StopPrice       float64     `json:"stop_price,omitempty"`
	Quantity        int64       `json:"quantity"`
	FilledQuantity  int64       `json:"filled_quantity"`
	DisplayQuantity int64       `json:"display_quantity,omitempty"`
	TraderID        string      `json:"trader_id"`
	Status          OrderStatus `json:"status"`
	ExchangeID      string      `json:"exchange_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	ExpiresAt       time.Time   `json:"expires_at,omitempty"`
	Priority        int         `json:"priority"`
}

// OrderParams carries the caller-supplied fields for NewOrder. Optional
// fields left at their zero value get defaults (OrderID, DisplayQuantity,
// timestamps).
type OrderParams struct {
	OrderID         string
	ClientOrderID   string
	Symbol          string
	Type            OrderType
	Side            OrderSide
	Price           float64
	StopPrice       float64
	Quantity        int64
	DisplayQuantity int64
	TraderID        string
	ExpiresAt       time.Time
	Priority        int
}

// NewOrder builds an order from params, enforcing the construction-time
// invariants. A malformed order fails here and never reaches the pipeline.
func NewOrder(p OrderParams) (*Order, error) {
	if p.Symbol == "" {
		return nil, errors.New("order: symbol cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, fmt.Errorf("order: invalid order type %q", p.Type)
	}
	if !p.Side.IsValid() {
		return nil, fmt.Errorf("order: invalid side %q", p.Side)
	}
	if p.Quantity <= 0 {
		return nil, errors.New("order: quantity must be positive")
	}
	if p.TraderID == "" {
		return nil, errors.New("order: trader id cannot be empty")
	}
	if p.Type.RequiresPrice() && p.Price <= 0 {
		return nil, fmt.Errorf("order: price must be positive for %s orders", p.Type)
	}
	if p.Type.RequiresStopPrice() && p.StopPrice <= 0 {
		return nil, fmt.Errorf("order: stop price must be positive for %s orders", p.Type)
	}
	if p.DisplayQuantity < 0 {
		return nil, errors.New("order: display quantity cannot be negative")
	}
	if p.DisplayQuantity > p.Quantity {
		return nil, errors.New("order: display quantity cannot exceed total quantity")
	}

	id := p.OrderID
	if id == "" {
		id = uuid.New().String()
	}
	display := p.DisplayQuantity
	if display == 0 {
		display = p.Quantity
	}
	now := time.Now()

	return &Order{
		OrderID:         id,
		ClientOrderID:   p.ClientOrderID,
		Symbol:          p.Symbol,
		Type:            p.Type,
		Side:            p.Side,
		Price:           p.Price,
		StopPrice:       p.StopPrice,
		Quantity:        p.Quantity,
		DisplayQuantity: display,
		TraderID:        p.TraderID,
		Status:          StatusNew,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       p.ExpiresAt,
		Priority:        p.Priority,
	}, nil
}

// NewLimitOrder is a convenience constructor for plain limit orders.
func NewLimitOrder(symbol string, side OrderSide, price float64, quantity int64, traderID string) (*Order, error) {
	return NewOrder(OrderParams{
		Symbol:   symbol,
		Type:     Limit,
		Side:     side,
		Price:    price,
		Quantity: quantity,
		TraderID: traderID,
	})
}

// NewMarketOrder is a convenience constructor for market orders.
func NewMarketOrder(symbol string, side OrderSide, quantity int64, traderID string) (*Order, error) {
	return NewOrder(OrderParams{
		Symbol:   symbol,
		Type:     Market,
		Side:     side,
		Quantity: quantity,
		TraderID: traderID,
	})
}

// RemainingQuantity returns the unfilled quantity.
func (o *Order) RemainingQuantity() int64 {
	return o.Quantity - o.FilledQuantity
}

// IsComplete reports whether the order is fully filled.
func (o *Order) IsComplete() bool {
	return o.FilledQuantity == o.Quantity
}

// IsActive reports whether the order is still in a non-terminal state.
func (o *Order) IsActive() bool {
	return !o.Status.IsFinal()
}

// IsExpired reports whether the order carries an expiry in the past.
func (o *Order) IsExpired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && o.ExpiresAt.Before(now)
}

// WithStatus returns a copy of the order with the given status.
func (o *Order) WithStatus(status OrderStatus) *Order {
	next := *o
	next.Status = status
	next.UpdatedAt = time.Now()
	return &next
}

// WithFilledQuantity returns a copy of the order with the filled quantity
// set. The status is derived: a complete order becomes FILLED, a partial
// fill becomes PARTIALLY_FILLED.
func (o *Order) WithFilledQuantity(filled int64) *Order {
	next := *o
	next.FilledQuantity = filled
	next.UpdatedAt = time.Now()
	if next.IsComplete() {
		next.Status = StatusFilled
	} else if filled > 0 {
		next.Status = StatusPartiallyFilled
	}
	return &next
}

// WithFill returns a copy of the order with qty added to the filled quantity.
func (o *Order) WithFill(qty int64) *Order {
	return o.WithFilledQuantity(o.FilledQuantity + qty)
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%s, symbol=%s, type=%s, side=%s, price=%.2f, qty=%d/%d, status=%s}",
		o.OrderID, o.Symbol, o.Type, o.Side, o.Price, o.FilledQuantity, o.Quantity, o.Status)
}
