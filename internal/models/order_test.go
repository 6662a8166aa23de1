package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Defaults(t *testing.T) {
	o, err := NewOrder(OrderParams{
		Symbol:   "AAPL",
		Type:     Limit,
		Side:     Buy,
		Price:    150.00,
		Quantity: 100,
		TraderID: "TRADER-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, o.OrderID, "order id should be generated")
	assert.Equal(t, StatusNew, o.Status)
	assert.Equal(t, int64(100), o.DisplayQuantity, "display defaults to full quantity")
	assert.Equal(t, int64(0), o.FilledQuantity)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params OrderParams
	}{
		{"empty symbol", OrderParams{Type: Limit, Side: Buy, Price: 1, Quantity: 1, TraderID: "T"}},
		{"invalid type", OrderParams{Symbol: "AAPL", Type: "BOGUS", Side: Buy, Price: 1, Quantity: 1, TraderID: "T"}},
		{"invalid side", OrderParams{Symbol: "AAPL", Type: Limit, Side: "HOLD", Price: 1, Quantity: 1, TraderID: "T"}},
		{"zero quantity", OrderParams{Symbol: "AAPL", Type: Limit, Side: Buy, Price: 1, TraderID: "T"}},
		{"negative quantity", OrderParams{Symbol: "AAPL", Type: Limit, Side: Buy, Price: 1, Quantity: -5, TraderID: "T"}},
		{"empty trader", OrderParams{Symbol: "AAPL", Type: Limit, Side: Buy, Price: 1, Quantity: 1}},
		{"limit without price", OrderParams{Symbol: "AAPL", Type: Limit, Side: Buy, Quantity: 1, TraderID: "T"}},
		{"stop without stop price", OrderParams{Symbol: "AAPL", Type: Stop, Side: Buy, Quantity: 1, TraderID: "T"}},
		{"stop-limit without stop price", OrderParams{Symbol: "AAPL", Type: StopLimit, Side: Buy, Price: 1, Quantity: 1, TraderID: "T"}},
		{"negative display", OrderParams{Symbol: "AAPL", Type: Iceberg, Side: Buy, Price: 1, Quantity: 10, DisplayQuantity: -1, TraderID: "T"}},
		{"display exceeds quantity", OrderParams{Symbol: "AAPL", Type: Iceberg, Side: Buy, Price: 1, Quantity: 10, DisplayQuantity: 20, TraderID: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestNewMarketOrder_NoPriceRequired(t *testing.T) {
	o, err := NewMarketOrder("AAPL", Sell, 50, "TRADER-1")
	require.NoError(t, err)
	assert.Equal(t, Market, o.Type)
	assert.Zero(t, o.Price)
}

func TestOrderType_Predicates(t *testing.T) {
	assert.False(t, Market.RequiresPrice())
	assert.True(t, Limit.RequiresPrice())
	assert.True(t, IOC.RequiresPrice())
	assert.True(t, FOK.RequiresPrice())
	assert.True(t, Iceberg.RequiresPrice())
	assert.True(t, StopLimit.RequiresPrice())
	assert.True(t, Stop.RequiresPrice())

	assert.True(t, Stop.RequiresStopPrice())
	assert.True(t, StopLimit.RequiresStopPrice())
	assert.False(t, Limit.RequiresStopPrice())
}

func TestOrderSide_Opposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestOrderStatus_IsFinal(t *testing.T) {
	final := []OrderStatus{StatusFilled, StatusRejected, StatusCancelled, StatusExpired}
	for _, s := range final {
		assert.True(t, s.IsFinal(), "%s should be terminal", s)
	}
	open := []OrderStatus{StatusNew, StatusValidated, StatusPartiallyFilled}
	for _, s := range open {
		assert.False(t, s.IsFinal(), "%s should not be terminal", s)
	}
}

func TestOrder_WithFillDerivesStatus(t *testing.T) {
	o, err := NewLimitOrder("AAPL", Buy, 150.00, 100, "TRADER-1")
	require.NoError(t, err)

	partial := o.WithFill(40)
	assert.Equal(t, StatusPartiallyFilled, partial.Status)
	assert.Equal(t, int64(60), partial.RemainingQuantity())
	assert.False(t, partial.IsComplete())

	full := partial.WithFill(60)
	assert.Equal(t, StatusFilled, full.Status)
	assert.True(t, full.IsComplete())
	assert.False(t, full.IsActive())

	// The originals are untouched.
	assert.Equal(t, int64(0), o.FilledQuantity)
	assert.Equal(t, StatusNew, o.Status)
	assert.Equal(t, int64(40), partial.FilledQuantity)
}

func TestOrder_WithStatusCopies(t *testing.T) {
	o, err := NewLimitOrder("AAPL", Sell, 150.00, 100, "TRADER-1")
	require.NoError(t, err)

	rejected := o.WithStatus(StatusRejected)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, StatusNew, o.Status)
	assert.NotSame(t, o, rejected)
}

func TestOrder_IsExpired(t *testing.T) {
	now := time.Now()

	o, err := NewOrder(OrderParams{
		Symbol:    "AAPL",
		Type:      Limit,
		Side:      Buy,
		Price:     150.00,
		Quantity:  10,
		TraderID:  "TRADER-1",
		ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)
	assert.True(t, o.IsExpired(now))

	noExpiry, err := NewLimitOrder("AAPL", Buy, 150.00, 10, "TRADER-1")
	require.NoError(t, err)
	assert.False(t, noExpiry.IsExpired(now))
}
