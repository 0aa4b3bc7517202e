// Package messaging carries user events over RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-users-contract/internal/domain/event"
)

// Publisher writes user events to a durable queue on the default exchange.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	Queue string
}

// dial opens a connection and channel and declares the durable queue.
func dial(url, queue string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, Queue: queue}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish sends e as a persistent JSON message. The event type is also set
// as the AMQP message type.
func (p *Publisher) Publish(ctx context.Context, e event.UserEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         e.Type,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Handler processes one user event.
type Handler func(ctx context.Context, e event.UserEvent) error

// ErrMalformed marks a message that can never be processed.
var ErrMalformed = errors.New("malformed user event")

// Consumer delivers queued user events to a Handler.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	Queue    string
	Prefetch int
}

func NewConsumer(url, queue string, prefetch int) (*Consumer, error) {
	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 16
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, Queue: queue, Prefetch: prefetch}, nil
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the channel closes. Each delivery is
// acked on success, dropped when malformed and requeued on other errors.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	msgs, err := c.ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			switch outcome(Handle(ctx, msg.Body, h)) {
			case ack:
				_ = msg.Ack(false)
			case drop:
				_ = msg.Nack(false, false)
			case requeue:
				_ = msg.Nack(false, true)
			}
		}
	}
}

// Handle decodes body and passes the event to h. Bodies that do not decode
// or carry an unknown event type yield ErrMalformed.
func Handle(ctx context.Context, body []byte, h Handler) error {
	var e event.UserEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	if e.Type != event.UserCreated || e.UserID <= 0 {
		return ErrMalformed
	}
	return h(ctx, e)
}

type result int

const (
	ack result = iota
	drop
	requeue
)

func outcome(err error) result {
	switch {
	case err == nil:
		return ack
	case errors.Is(err, ErrMalformed):
		return drop
	default:
		return requeue
	}
}
