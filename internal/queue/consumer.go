package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded Message. A non-nil error causes the
// delivery to be nacked without requeue; nil acks it.
type Handler func(ctx context.Context, msg Message) error

// Consumer consumes a single durable queue with manual acknowledgement and
// prefetch 1, matching the intake adapter's single-flight-per-worker model.
type Consumer struct {
	url       string
	queueName string
	handler   Handler
}

// NewConsumer creates a Consumer bound to the given AMQP URL and queue name.
func NewConsumer(url, queueName string, handler Handler) *Consumer {
	return &Consumer{url: url, queueName: queueName, handler: handler}
}

// Run connects, declares the durable queue, and consumes until ctx is
// cancelled. On connection loss it reconnects with a bounded backoff; on
// cancellation it stops consuming new messages and returns once the
// in-flight delivery (if any) has been acked or nacked.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := c.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("queue: connection lost, reconnecting", "error", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		return nil
	}
}

func (c *Consumer) runOnce(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("queue: dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue: open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %q: %w", c.queueName, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("queue: set qos: %w", err)
	}

	deliveries, err := ch.Consume(c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return fmt.Errorf("queue: connection closed")
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("queue: delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		slog.Error("queue: malformed payload, nacking without requeue", "error", err)
		if err := d.Nack(false, false); err != nil {
			slog.Error("queue: failed to nack malformed delivery", "error", err)
		}
		return
	}

	if err := c.handler(ctx, msg); err != nil {
		slog.Error("queue: processing failed, nacking without requeue",
			"source_url", msg.SourceURL, "error", err)
		if nackErr := d.Nack(false, false); nackErr != nil {
			slog.Error("queue: failed to nack delivery", "error", nackErr)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("queue: failed to ack delivery", "source_url", msg.SourceURL, "error", err)
	}
}
