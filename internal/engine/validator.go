package engine

import (
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// Validator is the first pipeline stage: a pure accept/reject check on
// the incoming order. It never touches book state.
type Validator struct {
	symbols       map[string]struct{}
	decimalPlaces int32
	maxQuantity   int64
	maxValue      float64
	minValue      float64

	// Per-trader token buckets for submission rate limiting.
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewValidator builds a validator from the configured symbol whitelist
// and limits.
func NewValidator(cfg *config.Config) *Validator {
	symbols := make(map[string]struct{}, len(cfg.ValidSymbols))
	for _, s := range cfg.ValidSymbols {
		symbols[s] = struct{}{}
	}
	return &Validator{
		symbols:       symbols,
		decimalPlaces: cfg.PriceDecimalPlaces,
		maxQuantity:   cfg.MaxOrderQuantity,
		maxValue:      cfg.MaxOrderValue,
		minValue:      cfg.MinOrderValue,
		limit:         rate.Limit(cfg.TraderOrdersPerSec),
		burst:         cfg.TraderOrderBurst,
		limiters:      make(map[string]*rate.Limiter),
	}
}

// Validate reports whether the order may proceed to the risk stage.
func (v *Validator) Validate(order *models.Order) bool {
	if order == nil {
		return false
	}
	return v.validateSymbol(order) &&
		v.validatePrice(order) &&
		v.validateQuantity(order) &&
		v.validateOrderValue(order) &&
		v.validateTiming(order) &&
		v.validateOrderType(order)
}

func (v *Validator) validateSymbol(order *models.Order) bool {
	v.mu.Lock()
	_, ok := v.symbols[order.Symbol]
	v.mu.Unlock()
	if !ok {
		log.Printf("validator: unknown symbol %s for order %s", order.Symbol, order.OrderID)
		return false
	}
	return true
}

// validatePrice enforces tick granularity: prices must sit on the
// configured decimal grid. Market orders carry no price.
func (v *Validator) validatePrice(order *models.Order) bool {
	if order.Type == models.Market {
		return true
	}
	if order.Price <= 0 {
		return false
	}
	price := decimal.NewFromFloat(order.Price)
	if !price.Equal(price.Round(v.decimalPlaces)) {
		log.Printf("validator: price %.6f off tick grid for order %s", order.Price, order.OrderID)
		return false
	}
	return true
}

func (v *Validator) validateQuantity(order *models.Order) bool {
	return order.Quantity > 0 && order.Quantity <= v.maxQuantity
}

func (v *Validator) validateOrderValue(order *models.Order) bool {
	if order.Type == models.Market {
		return true
	}
	value := order.Price * float64(order.Quantity)
	if value < v.minValue || value > v.maxValue {
		log.Printf("validator: order %s value %.2f outside [%.2f, %.2f]",
			order.OrderID, value, v.minValue, v.maxValue)
		return false
	}
	return true
}

func (v *Validator) validateTiming(order *models.Order) bool {
	if order.IsExpired(time.Now()) {
		log.Printf("validator: order %s already expired", order.OrderID)
		return false
	}
	return v.allowTrader(order.TraderID)
}

func (v *Validator) allowTrader(traderID string) bool {
	v.mu.Lock()
	limiter, ok := v.limiters[traderID]
	if !ok {
		limiter = rate.NewLimiter(v.limit, v.burst)
		v.limiters[traderID] = limiter
	}
	v.mu.Unlock()

	if !limiter.Allow() {
		log.Printf("validator: trader %s over submission rate limit", traderID)
		return false
	}
	return true
}

func (v *Validator) validateOrderType(order *models.Order) bool {
	switch order.Type {
	case models.Market:
		return true
	case models.Limit, models.IOC, models.FOK:
		return order.Price > 0
	case models.Stop:
		return order.StopPrice > 0 && order.Price > 0
	case models.StopLimit:
		return order.StopPrice > 0 && order.Price > 0
	case models.Iceberg:
		return order.Price > 0 &&
			order.DisplayQuantity > 0 &&
			order.DisplayQuantity <= order.Quantity
	default:
		return false
	}
}

// AddSymbol extends the whitelist at runtime.
func (v *Validator) AddSymbol(symbol string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.symbols[symbol] = struct{}{}
}
