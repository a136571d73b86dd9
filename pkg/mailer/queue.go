package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DeliveryRequest is the message body published for the mail worker.
// Attachment bodies are base64 in JSON.
type DeliveryRequest struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
}

// QueueNotifier hands messages to an external mail worker through a durable
// RabbitMQ queue. Delivery counts as done once the broker has the message.
type QueueNotifier struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewQueueNotifier(url, queue string, log *zap.Logger) *QueueNotifier {
	return &QueueNotifier{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("notifier", "queue"), zap.String("queue", queue)),
	}
}

func (n *QueueNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(DeliveryRequest{
		To:          msg.To,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Attachments: msg.Attachments,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode delivery request: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, err := n.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		// drop the channel so the next call redials
		n.reset()
		return fmt.Errorf("publish delivery request: %w", err)
	}
	return nil
}

// channel returns the open channel, dialing and declaring the queue if needed.
// Caller holds n.mu.
func (n *QueueNotifier) channel() (*amqp.Channel, error) {
	if n.ch != nil && !n.ch.IsClosed() {
		return n.ch, nil
	}
	n.reset()

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	n.log.Info("Connected to RabbitMQ")
	n.conn, n.ch = conn, ch
	return ch, nil
}

func (n *QueueNotifier) reset() {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
	n.conn, n.ch = nil, nil
}

// Close releases the broker connection.
func (n *QueueNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset()
	return nil
}
