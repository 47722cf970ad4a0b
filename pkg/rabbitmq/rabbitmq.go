package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dailydiet/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// DietEventsQueue is the durable queue receiving diet ledger events.
const DietEventsQueue = "diet_events"

// Channel is the subset of *amqp.Channel used by Client.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel Channel
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// DietEvent is the JSON message published for every diet ledger write.
type DietEvent struct {
	Event      string      `json:"event"`
	Diet       models.Diet `json:"diet"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewClient connects to RabbitMQ, opens a channel and declares the diet events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	client, err := NewClientWithChannel(ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	client.conn = conn

	logrus.WithField("queue", DietEventsQueue).Info("RabbitMQ client connected")
	return client, nil
}

// NewClientWithChannel wraps an already open channel and declares the queue on it.
func NewClientWithChannel(ch Channel) (*Client, error) {
	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", DietEventsQueue, err)
	}
	return &Client{channel: ch}, nil
}

func declareQueue(ch Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		DietEventsQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishDietEvent publishes a persistent JSON DietEvent to the diet events queue.
func (c *Client) PublishDietEvent(event string, diet models.Diet) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(DietEvent{Event: event, Diet: diet, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal diet event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",              // default exchange
		DietEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish diet event: %w", err)
	}

	logrus.WithFields(logrus.Fields{"event": event, "diet_id": diet.ID}).Debug("diet event published")
	return nil
}

// ConsumeDietEvents delivers decoded events to handler until the channel closes.
// Messages are acked on success and nacked without requeue on failure.
func (c *Client) ConsumeDietEvents(handler func(DietEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareQueue(c.channel)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			var event DietEvent
			err := json.Unmarshal(msg.Body, &event)
			if err == nil {
				err = handler(event)
			}
			if err != nil {
				logrus.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Warn("diet event rejected")
				if nackErr := msg.Nack(false, false); nackErr != nil {
					logrus.WithError(nackErr).Error("failed to nack diet event")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				logrus.WithError(ackErr).Error("failed to ack diet event")
			}
		}
	}()

	return nil
}

// LogDietEvent is a consumer handler that records received events in the log.
func LogDietEvent(event DietEvent) error {
	logrus.WithFields(logrus.Fields{
		"event":   event.Event,
		"diet_id": event.Diet.ID,
		"user_id": event.Diet.UserID,
	}).Info("diet event received")
	return nil
}
