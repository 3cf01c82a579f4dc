package rabbitmq

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-ordering/internal/config"
)

const (
	OrdersExchange    = "orders_topic"
	DeadLetterEx      = "dlx"
	NotificationsQ    = "notifications.q"
	DeadLetterQ       = "dlq"
	DeadLetterKey     = "dlq"
	notificationsBind = "order.placed"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (c *Client) Channel() *amqp.Channel { return c.ch }

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func Dial(cfg config.RabbitMQConfig) (*Client, error) {
	scheme := "amqp"
	if cfg.UseTLS {
		scheme = "amqps"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/",
	}
	if cfg.VHost != "/" {
		u.Path = "/" + cfg.VHost
	}

	var (
		conn *amqp.Connection
		err  error
	)
	if cfg.UseTLS {
		conn, err = amqp.DialTLS(u.String(), &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = amqp.Dial(u.String())
	}
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

// DeclareTopology creates the exchanges and queues both modes rely on.
// Every declaration is idempotent.
func (c *Client) DeclareTopology() error {
	ch := c.ch
	if err := ch.ExchangeDeclare(OrdersExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", OrdersExchange, err)
	}
	if err := ch.ExchangeDeclare(DeadLetterEx, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DeadLetterEx, err)
	}
	if _, err := ch.QueueDeclare(NotificationsQ, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    DeadLetterEx,
		"x-dead-letter-routing-key": DeadLetterKey,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", NotificationsQ, err)
	}
	if _, err := ch.QueueDeclare(DeadLetterQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", DeadLetterQ, err)
	}
	if err := ch.QueueBind(NotificationsQ, notificationsBind, OrdersExchange, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", NotificationsQ, err)
	}
	if err := ch.QueueBind(DeadLetterQ, DeadLetterKey, DeadLetterEx, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", DeadLetterQ, err)
	}
	return nil
}

// Publish sends body and waits for the broker's ack or nack of this
// message. A confirm arriving after ctx is done is dropped with its
// DeferredConfirmation and never seen by a later Publish.
func (c *Client) Publish(ctx context.Context, exchange, key string,
	body []byte, headers amqp.Table, correlationID string) error {

	dc, err := c.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			MessageId:     uuid.NewString(),
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Headers:       headers,
			Body:          body,
		},
	)
	if err != nil {
		return err
	}
	if dc == nil {
		return nil
	}
	return awaitConfirm(ctx, dc)
}

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

var ErrNacked = errors.New("publish NACK from broker")

func awaitConfirm(ctx context.Context, c confirmation) error {
	ack, err := c.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !ack {
		return ErrNacked
	}
	return nil
}

// EventPublisher puts domain events on the orders exchange.
type EventPublisher struct {
	client  *Client
	source  string
	timeout time.Duration
}

func NewEventPublisher(c *Client, source string) *EventPublisher {
	return &EventPublisher{client: c, source: source, timeout: 5 * time.Second}
}

func (p *EventPublisher) Publish(ctx context.Context, routingKey, correlationID string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Publish(ctx, OrdersExchange, routingKey, body, amqp.Table{"x-source": p.source}, correlationID)
}

// Consume sets the prefetch and starts a manual-ack consumer on queue.
func (c *Client) Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error) {
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return c.ch.Consume(queue, consumer, false, false, false, false, nil)
}

// Cancel stops delivery to consumer without closing the channel.
func (c *Client) Cancel(consumer string) error { return c.ch.Cancel(consumer, false) }
