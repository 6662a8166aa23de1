package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

func validatorConfig() *config.Config {
	return &config.Config{
		ValidSymbols:       []string{"AAPL", "GOOGL"},
		PriceDecimalPlaces: 2,
		MaxOrderQuantity:   10_000,
		MaxOrderValue:      1_000_000,
		MinOrderValue:      0.01,
		TraderOrdersPerSec: 1_000,
		TraderOrderBurst:   1_000,
	}
}

func mustOrder(t *testing.T, p models.OrderParams) *models.Order {
	t.Helper()
	o, err := models.NewOrder(p)
	require.NoError(t, err)
	return o
}

func TestValidator_Accepts(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.25, Quantity: 100, TraderID: "T1",
	})
	assert.True(t, v.Validate(o))
}

func TestValidator_NilOrder(t *testing.T) {
	v := NewValidator(validatorConfig())
	assert.False(t, v.Validate(nil))
}

func TestValidator_UnknownSymbol(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "TSLA", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 100, TraderID: "T1",
	})
	assert.False(t, v.Validate(o))

	v.AddSymbol("TSLA")
	assert.True(t, v.Validate(o))
}

func TestValidator_PriceOffTickGrid(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.001, Quantity: 100, TraderID: "T1",
	})
	assert.False(t, v.Validate(o), "three decimals on a two-decimal grid")
}

func TestValidator_MarketOrderSkipsPriceChecks(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Market, Side: models.Sell,
		Quantity: 100, TraderID: "T1",
	})
	assert.True(t, v.Validate(o))
}

func TestValidator_QuantityCap(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 1.00, Quantity: 10_001, TraderID: "T1",
	})
	assert.False(t, v.Validate(o))
}

func TestValidator_OrderValueBounds(t *testing.T) {
	v := NewValidator(validatorConfig())

	tooBig := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 500.00, Quantity: 10_000, TraderID: "T1",
	})
	assert.False(t, v.Validate(tooBig), "5M notional over the 1M cap")
}

func TestValidator_ExpiredOrder(t *testing.T) {
	v := NewValidator(validatorConfig())

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 100, TraderID: "T1",
		ExpiresAt: time.Now().Add(-time.Second),
	})
	assert.False(t, v.Validate(o))
}

func TestValidator_TraderRateLimit(t *testing.T) {
	cfg := validatorConfig()
	cfg.TraderOrdersPerSec = 1
	cfg.TraderOrderBurst = 2
	v := NewValidator(cfg)

	o := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 100, TraderID: "FAST",
	})
	assert.True(t, v.Validate(o))
	assert.True(t, v.Validate(o))
	assert.False(t, v.Validate(o), "burst of 2 exhausted")

	// Another trader has a fresh bucket.
	other := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Limit, Side: models.Buy,
		Price: 150.00, Quantity: 100, TraderID: "SLOW",
	})
	assert.True(t, v.Validate(other))
}

func TestValidator_TypeRules(t *testing.T) {
	v := NewValidator(validatorConfig())

	iceberg := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.Iceberg, Side: models.Sell,
		Price: 150.00, Quantity: 1000, DisplayQuantity: 100, TraderID: "T1",
	})
	assert.True(t, v.Validate(iceberg))

	stopLimit := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.StopLimit, Side: models.Sell,
		Price: 150.00, StopPrice: 151.00, Quantity: 100, TraderID: "T1",
	})
	assert.True(t, v.Validate(stopLimit))

	fok := mustOrder(t, models.OrderParams{
		Symbol: "AAPL", Type: models.FOK, Side: models.Buy,
		Price: 150.00, Quantity: 100, TraderID: "T1",
	})
	assert.True(t, v.Validate(fok))
}
