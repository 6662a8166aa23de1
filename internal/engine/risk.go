package engine

import (
	"log"
	"math"
	"sync"

	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// RiskManager is the second pipeline stage. It tracks trader- and
// symbol-level exposure outside the book and declines orders that would
// breach a limit. Like the validator it has no effect on book state;
// positions only move when UpdatePositions is called after a successful
// match.
type RiskManager struct {
	maxTraderPosition float64
	maxSingleOrder    float64
	maxSymbolPosition float64
	maxPriceDeviation float64

	mu      sync.Mutex
	traders map[string]*traderPosition
	symbols map[string]*symbolPosition
}

type traderPosition struct {
	buyValue  float64
	sellValue float64
	net       float64
	bySymbol  map[string]float64
}

type symbolPosition struct {
	totalValue float64
	lastPrice  float64
}

// NewRiskManager builds a risk manager from the configured limits.
func NewRiskManager(cfg *config.Config) *RiskManager {
	return &RiskManager{
		maxTraderPosition: cfg.MaxTraderPosition,
		maxSingleOrder:    cfg.MaxSingleOrder,
		maxSymbolPosition: cfg.MaxSymbolPosition,
		maxPriceDeviation: cfg.MaxPriceDeviation,
		traders:           make(map[string]*traderPosition),
		symbols:           make(map[string]*symbolPosition),
	}
}

// CheckRisk reports whether the order may proceed to matching.
func (r *RiskManager) CheckRisk(order *models.Order) bool {
	if order == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.checkSingleOrder(order) &&
		r.checkTraderExposure(order) &&
		r.checkSymbolExposure(order) &&
		r.checkPriceDeviation(order)
}

func (r *RiskManager) checkSingleOrder(order *models.Order) bool {
	if orderValue(order) > r.maxSingleOrder {
		log.Printf("risk: order %s value %.2f exceeds single-order cap %.2f",
			order.OrderID, orderValue(order), r.maxSingleOrder)
		return false
	}
	return true
}

func (r *RiskManager) checkTraderExposure(order *models.Order) bool {
	pos := r.trader(order.TraderID)
	delta := signedValue(order)

	if math.Abs(pos.net+delta) > r.maxTraderPosition {
		log.Printf("risk: trader %s position would exceed cap", order.TraderID)
		return false
	}
	if math.Abs(pos.bySymbol[order.Symbol]+delta) > r.maxSymbolPosition {
		log.Printf("risk: trader %s position in %s would exceed cap", order.TraderID, order.Symbol)
		return false
	}
	return true
}

func (r *RiskManager) checkSymbolExposure(order *models.Order) bool {
	pos := r.symbol(order.Symbol)
	if math.Abs(pos.totalValue+signedValue(order)) > r.maxSymbolPosition {
		log.Printf("risk: symbol %s exposure would exceed cap", order.Symbol)
		return false
	}
	return true
}

// checkPriceDeviation declines priced orders too far from the last price
// this stage has seen for the symbol. Nothing to compare against until
// the first position update lands.
func (r *RiskManager) checkPriceDeviation(order *models.Order) bool {
	if order.Type == models.Market {
		return true
	}
	pos, ok := r.symbols[order.Symbol]
	if !ok || pos.lastPrice <= 0 {
		return true
	}
	deviation := math.Abs(order.Price-pos.lastPrice) / pos.lastPrice
	if deviation > r.maxPriceDeviation {
		log.Printf("risk: order %s price deviation %.4f exceeds %.4f",
			order.OrderID, deviation, r.maxPriceDeviation)
		return false
	}
	return true
}

// UpdatePositions applies the order's value to trader and symbol
// exposure. The pipeline calls this after the match stage completes an
// order; rejected orders never reach it.
func (r *RiskManager) UpdatePositions(order *models.Order) {
	if order == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	value := orderValue(order)
	delta := signedValue(order)

	pos := r.trader(order.TraderID)
	if order.Side == models.Buy {
		pos.buyValue += value
	} else {
		pos.sellValue += value
	}
	pos.net += delta
	pos.bySymbol[order.Symbol] += delta

	sym := r.symbol(order.Symbol)
	sym.totalValue += delta
	if order.Price > 0 {
		sym.lastPrice = order.Price
	}
}

// TraderExposure returns the trader's current net position value.
func (r *RiskManager) TraderExposure(traderID string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos, ok := r.traders[traderID]; ok {
		return pos.net
	}
	return 0
}

// trader returns the position record for traderID, creating it if
// absent. Caller must hold r.mu.
func (r *RiskManager) trader(traderID string) *traderPosition {
	pos, ok := r.traders[traderID]
	if !ok {
		pos = &traderPosition{bySymbol: make(map[string]float64)}
		r.traders[traderID] = pos
	}
	return pos
}

// symbol returns the position record for symbol, creating it if absent.
// Caller must hold r.mu.
func (r *RiskManager) symbol(name string) *symbolPosition {
	pos, ok := r.symbols[name]
	if !ok {
		pos = &symbolPosition{}
		r.symbols[name] = pos
	}
	return pos
}

func orderValue(order *models.Order) float64 {
	return order.Price * float64(order.Quantity)
}

func signedValue(order *models.Order) float64 {
	if order.Side == models.Buy {
		return orderValue(order)
	}
	return -orderValue(order)
}
