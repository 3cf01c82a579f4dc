package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gopkg.in/tomb.v2"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/domain"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// Broker is the part of the RabbitMQ client the consumer needs.
type Broker interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
	Cancel(consumer string) error
}

// OrderNotifier handles one order.placed event.
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, orderID string) (Outcome, error)
}

type NotificatorService struct {
	broker     Broker
	notifier   OrderNotifier
	queue      string
	consumer   string
	prefetch   int
	msgTimeout time.Duration
	lg         *logger.Logger
}

func NewNotificatorService(broker Broker, notifier OrderNotifier, queue, consumer string, prefetch int, lg *logger.Logger) *NotificatorService {
	if prefetch <= 0 {
		prefetch = 1
	}
	if consumer == "" {
		consumer = "notifier"
	}
	return &NotificatorService{
		broker:     broker,
		notifier:   notifier,
		queue:      queue,
		consumer:   consumer,
		prefetch:   prefetch,
		msgTimeout: 30 * time.Second,
		lg:         lg,
	}
}

// Run consumes until ctx is cancelled or the delivery channel closes. The
// message in flight at shutdown is finished before Run returns.
func (s *NotificatorService) Run(ctx context.Context) error {
	msgs, err := s.broker.Consume(s.queue, s.consumer, s.prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", s.queue, err)
	}
	s.lg.Info("consumer_started", map[string]any{"queue": s.queue, "consumer": s.consumer, "prefetch": s.prefetch})

	t, tctx := tomb.WithContext(ctx)
	t.Go(func() error {
		for {
			select {
			case <-t.Dying():
				return nil
			case d, ok := <-msgs:
				if !ok {
					return errors.New("delivery channel closed")
				}
				s.handle(context.WithoutCancel(tctx), d)
			}
		}
	})

	<-t.Dying()
	if err := s.broker.Cancel(s.consumer); err != nil {
		s.lg.Warn("consumer_cancel_failed", map[string]any{"reason": err.Error()})
	}
	err = t.Wait()
	s.lg.Info("graceful_shutdown", map[string]any{"consumer": s.consumer})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *NotificatorService) handle(ctx context.Context, d amqp.Delivery) {
	ctx, cancel := context.WithTimeout(ctx, s.msgTimeout)
	defer cancel()

	err := s.processOne(ctx, d)
	fields := map[string]any{
		"message_id":     d.MessageId,
		"correlation_id": d.CorrelationId,
		"redelivered":    d.Redelivered,
	}
	switch Decide(err, d.Redelivered) {
	case ActionAck:
		_ = d.Ack(false)
	case ActionRequeue:
		s.lg.Warn("message_requeued", withReason(fields, err))
		_ = d.Nack(false, true)
	case ActionDeadLetter:
		s.lg.Error("message_dead_lettered", err, fields)
		_ = d.Nack(false, false)
	}
}

func withReason(fields map[string]any, err error) map[string]any {
	fields["reason"] = err.Error()
	return fields
}

func (s *NotificatorService) processOne(ctx context.Context, d amqp.Delivery) error {
	var ev domain.OrderPlacedEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("decode event: %v: %w", err, ErrDLQ)
	}
	if ev.OrderID == "" {
		return fmt.Errorf("event without order id: %w", ErrDLQ)
	}

	out, err := s.notifier.NotifyOrder(ctx, ev.OrderID)
	switch {
	case err == nil:
		s.lg.Debug("order_event_handled", map[string]any{"order_id": ev.OrderID, "result": out.Result})
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("order %s: %v: %w", ev.OrderID, err, ErrDLQ)
	default:
		return fmt.Errorf("%v: %w", err, ErrRequeue)
	}
}

type Action int

const (
	ActionAck Action = iota
	ActionRequeue
	ActionDeadLetter
)

// Decide maps a processing result onto a broker action. A message gets one
// retry: failing again after redelivery sends it to the dead letter queue.
func Decide(err error, redelivered bool) Action {
	switch {
	case err == nil:
		return ActionAck
	case errors.Is(err, ErrDLQ):
		return ActionDeadLetter
	case redelivered:
		return ActionDeadLetter
	default:
		return ActionRequeue
	}
}
