// Package amqp connects the API and the worker through RabbitMQ. One
// direct exchange carries two routing keys: notification checks and
// backup requests, both bound to the same durable queue.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
)

type Client struct {
	url          string
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	notifyKey    string
	backupKey    string

	// Circuit breaker state, updated atomically.
	failureCount int64
	lastFailure  time.Time
	state        int32
}

func NewClient(url, exchangeName, queueName, notifyKey, backupKey string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		notifyKey:    notifyKey,
		backupKey:    backupKey,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{c.notifyKey, c.backupKey} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue with key %s: %w", key, err)
		}
	}

	return nil
}

// PublishNotificationCheck asks the worker to evaluate notification
// rules for a user.
func (c *Client) PublishNotificationCheck(ctx context.Context, userID int64) error {
	msg := NewNotificationCheckMessage(userID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.notifyKey, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published notification check message",
		"user_id", userID,
		"exchange", c.exchangeName,
		"routing_key", c.notifyKey)
	return nil
}

// PublishBackupRequest asks the worker to snapshot user data. Zero
// userID requests the full sweep.
func (c *Client) PublishBackupRequest(ctx context.Context, userID int64) error {
	msg := NewBackupRequestMessage(userID)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, c.backupKey, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published backup request message",
		"user_id", userID,
		"exchange", c.exchangeName,
		"routing_key", c.backupKey)
	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing publish to %s", routingKey)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// Handlers receives consumed messages, dispatched by routing key.
type Handlers struct {
	NotificationCheck func(*NotificationCheckMessage) error
	BackupRequest     func(*BackupRequestMessage) error
}

// SetPrefetch caps the number of unacked deliveries per consumer.
func (c *Client) SetPrefetch(count int) error {
	if err := c.channel.Qos(count, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	return nil
}

// Consume processes queue messages until the context is cancelled.
// A handler error nacks with requeue; an unparseable message is
// dropped.
func (c *Client) Consume(ctx context.Context, h Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			c.dispatch(ctx, delivery, h)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, h Handlers) {
	var handlerErr error
	var parseErr error

	switch delivery.RoutingKey {
	case c.notifyKey:
		msg, err := NotificationCheckMessageFromJSON(delivery.Body)
		if err != nil {
			parseErr = err
		} else if h.NotificationCheck != nil {
			handlerErr = h.NotificationCheck(msg)
		}
	case c.backupKey:
		msg, err := BackupRequestMessageFromJSON(delivery.Body)
		if err != nil {
			parseErr = err
		} else if h.BackupRequest != nil {
			handlerErr = h.BackupRequest(msg)
		}
	default:
		slog.WarnContext(ctx, "Unknown routing key, dropping message", "routing_key", delivery.RoutingKey)
		delivery.Nack(false, false)
		return
	}

	// An unparseable message would loop forever if requeued.
	if parseErr != nil {
		slog.ErrorContext(ctx, "Failed to unmarshal message",
			"error", parseErr,
			"routing_key", delivery.RoutingKey)
		delivery.Nack(false, false)
		return
	}

	if handlerErr != nil {
		slog.ErrorContext(ctx, "Failed to handle message",
			"error", handlerErr,
			"routing_key", delivery.RoutingKey)
		delivery.Nack(false, true)
		return
	}

	delivery.Ack(false)
	slog.DebugContext(ctx, "Message processed", "routing_key", delivery.RoutingKey)
}

func (c *Client) isCircuitOpen() bool {
	state := atomic.LoadInt32(&c.state)
	if state == StateClosed {
		return false
	}
	if state == StateOpen && time.Since(c.lastFailure) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return state == StateOpen
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.lastFailure = time.Now()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns the reconnect delay for an attempt,
// capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Reconnect re-dials with exponential backoff until the context is
// cancelled. Used by the worker after a dropped connection.
func (c *Client) Reconnect(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(exponentialBackoff(attempt)):
		}

		if err := c.connect(); err != nil {
			slog.WarnContext(ctx, "Reconnect attempt failed", "attempt", attempt+1, "error", err)
			if isConnectionError(err) {
				continue
			}
			return err
		}

		slog.InfoContext(ctx, "Reconnected to AMQP", "attempt", attempt+1)
		c.recordSuccess()
		return nil
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
