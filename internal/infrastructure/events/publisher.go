// Package events publishes product lookup events to RabbitMQ. Publishing is
// best effort: errors are logged and returned so callers can ignore them
// without failing the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labelscan/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue receives ProductClassified events
const DefaultQueue = "product.classified"

// AMQPPublisher publishes events to a durable RabbitMQ queue
type AMQPPublisher struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)
}

// NewAMQPPublisher creates a publisher for the broker at url
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &AMQPPublisher{url: url, queue: queue, dial: amqp.Dial}
}

// PublishProductClassified sends the event as a persistent JSON message
func (p *AMQPPublisher) PublishProductClassified(ctx context.Context, event domain.ProductClassifiedEvent) error {
	conn, err := p.dial(p.url)
	if err != nil {
		log.Printf("[events] dial failed: %v", err)
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("[events] channel open failed: %v", err)
		return fmt.Errorf("open channel: %w", err)
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
		log.Printf("[events] queue declare failed: %v", err)
		return fmt.Errorf("declare queue %q: %w", p.queue, err)
	}

	pub, err := newPublishing(event, time.Now().UTC())
	if err != nil {
		log.Printf("[events] marshal event failed: %v", err)
		return err
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		log.Printf("[events] publish failed: %v", err)
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}

	return nil
}

func newPublishing(event domain.ProductClassifiedEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         "product.classified",
		Timestamp:    now,
		Body:         body,
	}, nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// PublishProductClassified implements domain.EventPublisher
func (NoopPublisher) PublishProductClassified(context.Context, domain.ProductClassifiedEvent) error {
	return nil
}
