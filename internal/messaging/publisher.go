package messaging

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"

	"github.com/BaldrVivaldelli/thoth-trading/internal/metrics"
	"github.com/BaldrVivaldelli/thoth-trading/internal/models"
)

// Publisher publishes domain events (order completions, executed trades)
// to a RabbitMQ topic exchange. The matching loop itself is purely
// computational; everything downstream of it (notifications, analytics)
// consumes these events asynchronously.
//
// EVENTS PUBLISHED:
//   - order.completed: an order reached a terminal state
//   - order.cancelled: a resting order was cancelled
//   - trade.executed: a match occurred
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	metrics  *metrics.Metrics
}

// TradeEvent is the wire payload for trade.executed.
type TradeEvent struct {
	TradeID      string    `json:"trade_id"`
	Symbol       string    `json:"symbol"`
	Price        float64   `json:"price"`
	Quantity     int64     `json:"quantity"`
	BuyOrderID   string    `json:"buy_order_id"`
	SellOrderID  string    `json:"sell_order_id"`
	BuyTraderID  string    `json:"buy_trader_id"`
	SellTraderID string    `json:"sell_trader_id"`
	IsBuyerMaker bool      `json:"is_buyer_maker"`
	Timestamp    time.Time `json:"timestamp"`
}

// OrderEvent is the wire payload for order.* events.
type OrderEvent struct {
	OrderID        string    `json:"order_id"`
	Symbol         string    `json:"symbol"`
	Side           string    `json:"side"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Price          float64   `json:"price"`
	Quantity       int64     `json:"quantity"`
	FilledQuantity int64     `json:"filled_quantity"`
	TraderID       string    `json:"trader_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewPublisher initializes a RabbitMQ publisher on the given topic
// exchange. m may be nil.
func NewPublisher(amqpURL, exchange string, m *metrics.Metrics) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		metrics:  m,
	}, nil
}

// Publish sends an event message with the given routing key.
func (p *Publisher) Publish(routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("messaging: publish %s failed: %v", routingKey, err)
		return err
	}

	if p.metrics != nil {
		p.metrics.MQMessagesPublished.WithLabelValues(routingKey).Inc()
	}
	return nil
}

// PublishTrade publishes trade.executed for t.
func (p *Publisher) PublishTrade(t *models.Trade) error {
	return p.Publish("trade.executed", TradeEvent{
		TradeID:      t.TradeID,
		Symbol:       t.Symbol,
		Price:        t.Price,
		Quantity:     t.Quantity,
		BuyOrderID:   t.BuyOrderID(),
		SellOrderID:  t.SellOrderID(),
		BuyTraderID:  t.BuyTraderID(),
		SellTraderID: t.SellTraderID(),
		IsBuyerMaker: t.IsBuyerMaker,
		Timestamp:    t.Timestamp,
	})
}

// PublishOrder publishes an order lifecycle event.
func (p *Publisher) PublishOrder(routingKey string, o *models.Order) error {
	return p.Publish(routingKey, OrderEvent{
		OrderID:        o.OrderID,
		Symbol:         o.Symbol,
		Side:           string(o.Side),
		Type:           string(o.Type),
		Status:         string(o.Status),
		Price:          o.Price,
		Quantity:       o.Quantity,
		FilledQuantity: o.FilledQuantity,
		TraderID:       o.TraderID,
		Timestamp:      o.UpdatedAt,
	})
}

// Close shuts down RabbitMQ resources gracefully.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
