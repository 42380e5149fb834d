package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/ashureev/talentscout/internal/domain"
)

// amqpChannel is the subset of *amqp.Channel used for publishing.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes submissions as JSON messages to a durable queue.
type AMQPPublisher struct {
	queue       string
	openChannel func() (amqpChannel, error)
	closeConn   func() error
	logger      *slog.Logger
}

// NewAMQPPublisher dials the broker at url.
func NewAMQPPublisher(url, queue string, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	logger.Info("Connected to RabbitMQ", "queue", queue)

	return &AMQPPublisher{
		queue: queue,
		openChannel: func() (amqpChannel, error) {
			ch, err := conn.Channel()
			if err != nil {
				return nil, err
			}
			return ch, nil
		},
		closeConn: conn.Close,
		logger:    logger,
	}, nil
}

// Publish sends sub to the configured queue. A channel is opened per
// message; submissions are rare.
func (p *AMQPPublisher) Publish(_ context.Context, sub domain.Submission) error {
	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() {
		if closeErr := ch.Close(); closeErr != nil {
			p.logger.Warn("failed to close AMQP channel", "error", closeErr)
		}
	}()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	err = ch.Publish(
		"", // default exchange routes by queue name
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    sub.SessionID,
			Timestamp:    time.Now(),
			Type:         string(sub.Reason),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish submission %s: %w", sub.SessionID, err)
	}
	return nil
}

// Close closes the broker connection.
func (p *AMQPPublisher) Close() error {
	if p.closeConn == nil {
		return nil
	}
	return p.closeConn()
}
