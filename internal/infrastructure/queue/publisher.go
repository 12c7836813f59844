// Package queue publishes checkout events to RabbitMQ. Publishing is best
// effort: errors are logged and returned so callers can ignore them without
// failing the checkout that produced the event.
package queue

import (
	"context"
	"encoding/json"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// NoopPublisher drops every event. It is used when no broker URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSaleConfirmed(_ context.Context, _ entity.SaleConfirmedEvent) error {
	return nil
}

const defaultDialTimeout = 3 * time.Second

// Publisher dials the broker for every event. The dial and the AMQP handshake
// are bounded by dialTimeout and by the caller's context.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	logger      *zap.Logger
}

func NewPublisher(url, queue string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{url: url, queue: queue, dialTimeout: defaultDialTimeout, logger: logger.Named("queue")}
}

// PublishSaleConfirmed sends event as a persistent JSON message to the
// configured queue through the default exchange.
func (p *Publisher) PublishSaleConfirmed(ctx context.Context, event entity.SaleConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal sale event failed", zap.Error(err))
		return err
	}
	return p.publish(ctx, body)
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			d := net.Dialer{Timeout: p.dialTimeout}
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// cleared by the client once the handshake completes
			deadline := time.Now().Add(p.dialTimeout)
			if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
				deadline = dl
			}
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	conn, err := p.dial(ctx)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq publish failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}
	return nil
}
