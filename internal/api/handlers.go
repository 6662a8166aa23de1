package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BaldrVivaldelli/thoth-trading/internal/cache"
	"github.com/BaldrVivaldelli/thoth-trading/internal/engine"
	"github.com/BaldrVivaldelli/thoth-trading/internal/middleware"
)

// Handler serves the order entry and market query endpoints, delegating
// to the engine façade. The cache is optional; when present, snapshot
// and ticker reads go through it.
type Handler struct {
	engine        *engine.Engine
	cache         *cache.RedisCache
	submitTimeout time.Duration
}

// NewHandler creates the API handler.
func NewHandler(eng *engine.Engine, redisCache *cache.RedisCache, submitTimeout time.Duration) *Handler {
	return &Handler{
		engine:        eng,
		cache:         redisCache,
		submitTimeout: submitTimeout,
	}
}

// PlaceOrder submits an order through the engine and waits for its
// completion handle, returning the terminal order state.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := req.toOrder(middleware.TraderID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	future := h.engine.SubmitOrder(order)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.submitTimeout)
	defer cancel()

	final, err := future.Get(ctx)
	if err != nil {
		if errors.Is(err, engine.ErrEngineNotRunning) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not running"})
			return
		}
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "order processing timed out"})
		return
	}

	c.JSON(http.StatusOK, final)
}

// CancelOrder removes a resting order. Idempotent: cancelling an unknown
// or already-completed order succeeds without effect.
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID := c.Param("id")
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	h.engine.CancelOrder(symbol, orderID)

	c.JSON(http.StatusOK, gin.H{
		"message":  "cancel accepted",
		"order_id": orderID,
		"symbol":   symbol,
	})
}

// GetOrder returns a resting order by id.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	order, ok := h.engine.RestingOrder(symbol, orderID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetBook returns a point-in-time snapshot of the symbol's book.
func (h *Handler) GetBook(c *gin.Context) {
	symbol := c.Param("symbol")

	if h.cache != nil {
		if snap, err := h.cache.GetSnapshot(c.Request.Context(), symbol); err == nil && snap != nil {
			c.JSON(http.StatusOK, snap)
			return
		}
	}

	snap, ok := h.engine.Snapshot(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no book for symbol"})
		return
	}

	if h.cache != nil {
		_ = h.cache.SetSnapshot(c.Request.Context(), snap)
	}
	c.JSON(http.StatusOK, snap)
}

// GetStatistics returns top-of-book statistics for the symbol.
func (h *Handler) GetStatistics(c *gin.Context) {
	symbol := c.Param("symbol")

	stats, ok := h.engine.Statistics(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no statistics for symbol"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symbol":        stats.Symbol,
		"bid_levels":    stats.BidLevels,
		"ask_levels":    stats.AskLevels,
		"best_bid":      stats.BestBid,
		"best_ask":      stats.BestAsk,
		"last_price":    stats.LastPrice,
		"last_quantity": stats.LastQuantity,
		"spread":        stats.Spread(),
		"mid_price":     stats.MidPrice(),
	})
}

// GetTicker returns the best bid/ask pair for the symbol.
func (h *Handler) GetTicker(c *gin.Context) {
	symbol := c.Param("symbol")

	if h.cache != nil {
		if ticker, err := h.cache.GetTicker(c.Request.Context(), symbol); err == nil && ticker != nil {
			c.JSON(http.StatusOK, ticker)
			return
		}
	}

	stats, ok := h.engine.Statistics(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no ticker for symbol"})
		return
	}

	ticker := &cache.Ticker{
		Symbol:       symbol,
		BestBid:      stats.BestBid,
		BestAsk:      stats.BestAsk,
		LastPrice:    stats.LastPrice,
		LastQuantity: stats.LastQuantity,
		Timestamp:    time.Now(),
	}
	if h.cache != nil {
		_ = h.cache.SetTicker(c.Request.Context(), ticker)
	}
	c.JSON(http.StatusOK, ticker)
}

// GetTrades returns the recent trade feed for the symbol, served from
// the cache when available.
func (h *Handler) GetTrades(c *gin.Context) {
	symbol := c.Param("symbol")

	if h.cache == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trade feed not enabled"})
		return
	}
	trades, err := h.cache.RecentTrades(c.Request.Context(), symbol, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trade feed unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "trades": trades})
}

// ListSymbols lists every symbol with a live book.
func (h *Handler) ListSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"symbols": h.engine.Symbols()})
}

// Health reports process liveness and engine state.
func (h *Handler) Health(c *gin.Context) {
	status := "ok"
	if !h.engine.IsRunning() {
		status = "engine stopped"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
