package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher delivers notification facts to a fanout exchange for the
// external delivery collaborator. Fire-and-forget: failures are logged and
// swallowed so billing and scheduling never stall on the broker.
type AMQPPublisher struct {
	exchange string
	logger   *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the fanout exchange.
func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("connected to RabbitMQ", slog.String("exchange", exchange))
	return &AMQPPublisher{
		exchange: exchange,
		logger:   logger,
		conn:     conn,
		channel:  ch,
	}, nil
}

// Ensure AMQPPublisher implements the portssvc.Notifier interface
var _ portssvc.Notifier = (*AMQPPublisher)(nil)

// Notify publishes the notification as JSON. Errors are logged, never returned.
func (p *AMQPPublisher) Notify(ctx context.Context, n domain.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		p.logger.Error("failed to marshal notification",
			slog.String("kind", string(n.Kind)),
			slog.String("error", err.Error()))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()

	err = ch.PublishWithContext(pubCtx,
		p.exchange,
		string(n.Kind), // routing key, informational on a fanout exchange
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   n.CreatedAt,
			Body:        body,
		})
	if err != nil {
		p.logger.Error("failed to publish notification",
			slog.String("kind", string(n.Kind)),
			slog.String("accountID", n.AccountID),
			slog.String("error", err.Error()))
	}
}

// Close shuts down the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
