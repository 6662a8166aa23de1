package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BaldrVivaldelli/thoth-trading/internal/api"
	"github.com/BaldrVivaldelli/thoth-trading/internal/cache"
	"github.com/BaldrVivaldelli/thoth-trading/internal/config"
	"github.com/BaldrVivaldelli/thoth-trading/internal/engine"
	"github.com/BaldrVivaldelli/thoth-trading/internal/messaging"
	"github.com/BaldrVivaldelli/thoth-trading/internal/metrics"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

func main() {
	cfg := config.Load()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics()
	}

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cfg, m)
		if err != nil {
			log.Printf("redis unavailable, running without cache: %v", err)
		} else {
			redisCache = rc
			defer redisCache.Close()
		}
	}

	var publisher *messaging.Publisher
	if cfg.RabbitMQEnabled {
		pub, err := messaging.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, m)
		if err != nil {
			log.Printf("rabbitmq unavailable, running without events: %v", err)
		} else {
			publisher = pub
			defer publisher.Close()
		}
	}

	eng := engine.New(cfg)
	eng.SetMetrics(m)
	eng.SetTradeCallback(func(t *models.Trade) {
		if publisher != nil {
			_ = publisher.PublishTrade(t)
		}
		if redisCache != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			_ = redisCache.PushTrade(ctx, t)
			cancel()
		}
	})
	eng.SetOrderCallback(func(o *models.Order) {
		if publisher == nil {
			return
		}
		key := "order.completed"
		if o.Status == models.StatusCancelled {
			key = "order.cancelled"
		}
		_ = publisher.PublishOrder(key, o)
	})

	eng.Start()
	defer eng.Stop()

	router := gin.New()
	api.RegisterRoutes(router, eng, redisCache, cfg, m)

	server := &http.Server{
		Addr:    cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("server listening on %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
