package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to RabbitMQ. Publishing is best effort:
// errors are logged and returned, and callers are free to ignore them.
// A connection is opened per publish; registrations are rare.
type Publisher struct {
	url    string
	logger *slog.Logger
}

func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

// PublishScreenRegistered publishes ev as a persistent message on the
// screen.registered queue.
func (p *Publisher) PublishScreenRegistered(ctx context.Context, ev ScreenRegisteredEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.WarnContext(ctx, "rabbitmq: marshal event failed", "error", err)
		return err
	}
	return p.publish(ctx, ScreenRegisteredQueue, body)
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.WarnContext(ctx, "rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WarnContext(ctx, "rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.WarnContext(ctx, "rabbitmq: queue declare failed", "queue", queue, "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.WarnContext(ctx, "rabbitmq: publish failed", "queue", queue, "error", err)
		return err
	}
	return nil
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishScreenRegistered(context.Context, ScreenRegisteredEvent) error { return nil }
