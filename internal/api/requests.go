package api

import (
	"errors"
	"time"

	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// PlaceOrderRequest is the JSON body for POST /api/orders.
type PlaceOrderRequest struct {
	ClientOrderID   string  `json:"client_order_id"`
	Symbol          string  `json:"symbol" binding:"required"`
	Type            string  `json:"type" binding:"required"`
	Side            string  `json:"side" binding:"required"`
	Price           float64 `json:"price"`
	StopPrice       float64 `json:"stop_price"`
	Quantity        int64   `json:"quantity" binding:"required"`
	DisplayQuantity int64   `json:"display_quantity"`
	TraderID        string  `json:"trader_id"`
	ExpiresAt       string  `json:"expires_at"`
}

// toOrder converts the request into a validated domain order. traderID
// overrides the body field when the caller is authenticated.
func (r *PlaceOrderRequest) toOrder(traderID string) (*models.Order, error) {
	if traderID == "" {
		traderID = r.TraderID
	}
	var expiresAt time.Time
	if r.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			return nil, errors.New("expires_at must be RFC3339")
		}
		expiresAt = t
	}
	return models.NewOrder(models.OrderParams{
		ClientOrderID:   r.ClientOrderID,
		Symbol:          r.Symbol,
		Type:            models.OrderType(r.Type),
		Side:            models.OrderSide(r.Side),
		Price:           r.Price,
		StopPrice:       r.StopPrice,
		Quantity:        r.Quantity,
		DisplayQuantity: r.DisplayQuantity,
		TraderID:        traderID,
		ExpiresAt:       expiresAt,
	})
}
