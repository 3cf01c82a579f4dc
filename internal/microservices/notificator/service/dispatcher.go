package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/common/metrics"
	"restaurant-ordering/internal/domain"
)

const (
	OutcomeSent      = "sent"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"

	CallCompleted = "completed"
	CallFailed    = "failed"
)

// ErrNoDelivery means every token was tried and none accepted the push.
var ErrNoDelivery = errors.New("no device accepted the notification")

type Outcome struct {
	Result  string `json:"result"`
	Tokens  int    `json:"tokens"`
	Success int    `json:"success"`
	Failure int    `json:"failure"`
	Pruned  int    `json:"pruned"`
}

type Dispatcher struct {
	gateway Gateway
	tokens  TokenStore
	orders  OrderStore
	voice   Caller
	opts    PayloadOptions
	lg      *logger.Logger
	now     func() time.Time
}

// NewDispatcher wires the pipeline. voice may be nil to skip phone calls.
func NewDispatcher(gw Gateway, tokens TokenStore, orders OrderStore, voice Caller, opts PayloadOptions, lg *logger.Logger) *Dispatcher {
	return &Dispatcher{gateway: gw, tokens: tokens, orders: orders, voice: voice, opts: opts, lg: lg, now: time.Now}
}

// NotifyOrder tells every admin device about a new order and records the
// result on the order. Orders already marked as notified are left alone.
func (d *Dispatcher) NotifyOrder(ctx context.Context, orderID string) (Outcome, error) {
	o, err := d.orders.Get(ctx, orderID)
	if err != nil {
		return Outcome{}, err
	}
	if o.NotificationSent {
		d.lg.Debug("notification_duplicate", map[string]any{"order_id": o.ID})
		return Outcome{Result: OutcomeDuplicate}, nil
	}

	out, err := d.push(ctx, o)
	d.call(ctx, o)
	return out, err
}

func (d *Dispatcher) push(ctx context.Context, o domain.Order) (Outcome, error) {
	fields := map[string]any{"order_id": o.ID, "order_number": o.OrderNumber}

	tokens, err := d.tokens.AdminTokens(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load admin tokens: %w", err)
	}
	if len(tokens) == 0 {
		d.lg.Warn("notification_skipped_no_tokens", fields)
		metrics.OrderNotifications.WithLabelValues(OutcomeSkipped).Inc()
		return Outcome{Result: OutcomeSkipped}, nil
	}

	now := d.now()
	out, err := d.send(ctx, tokens, OrderNotification(o, d.opts, now))
	fields["tokens"] = out.Tokens
	fields["success"] = out.Success
	fields["failure"] = out.Failure
	fields["pruned"] = out.Pruned
	if err != nil {
		metrics.OrderNotifications.WithLabelValues(OutcomeFailed).Inc()
		d.lg.Error("notification_failed", err, fields)
		return out, err
	}

	if err := d.orders.MarkNotified(ctx, o.ID, now.UTC()); err != nil {
		return out, err
	}
	metrics.OrderNotifications.WithLabelValues(OutcomeSent).Inc()
	d.lg.Info("notification_sent", fields)
	return out, nil
}

// send multicasts n, prunes tokens the gateway rejected for good and fails
// with ErrNoDelivery when nothing got through.
func (d *Dispatcher) send(ctx context.Context, tokens []string, n Notification) (Outcome, error) {
	out := Outcome{Tokens: len(tokens)}
	results, err := d.gateway.SendMulticast(ctx, tokens, n)
	if err != nil {
		out.Result = OutcomeFailed
		return out, err
	}

	var invalid, badArg []string
	for _, r := range results {
		if r.Err == nil {
			out.Success++
			continue
		}
		out.Failure++
		switch {
		case r.InvalidToken:
			invalid = append(invalid, r.Token)
		case r.InvalidArgument:
			badArg = append(badArg, r.Token)
		}
	}
	// Every token refused as invalid points at the message, not the tokens.
	if len(badArg) > 0 && len(badArg) == out.Failure && out.Success == 0 {
		d.lg.Error("notification_payload_rejected", ErrNoDelivery, map[string]any{"tokens": len(badArg)})
	} else {
		invalid = append(invalid, badArg...)
	}
	if len(invalid) > 0 {
		n, err := d.tokens.DeleteTokens(ctx, invalid)
		if err != nil {
			d.lg.Error("token_prune_failed", err, map[string]any{"count": len(invalid)})
		} else {
			out.Pruned = int(n)
			metrics.TokensPruned.Add(float64(n))
		}
	}

	if out.Success == 0 {
		out.Result = OutcomeFailed
		return out, ErrNoDelivery
	}
	out.Result = OutcomeSent
	return out, nil
}

func (d *Dispatcher) call(ctx context.Context, o domain.Order) {
	if d.voice == nil || o.CallStatus != "" {
		return
	}
	status, callErr := CallCompleted, ""
	sid, err := d.voice.Call(ctx, CallScript(o, d.opts))
	if err != nil {
		status, callErr = CallFailed, err.Error()
		d.lg.Error("admin_call_failed", err, map[string]any{"order_id": o.ID})
	} else {
		d.lg.Info("admin_call_placed", map[string]any{"order_id": o.ID, "call_sid": sid})
	}
	if err := d.orders.SetCallStatus(ctx, o.ID, status, callErr, d.now().UTC()); err != nil {
		d.lg.Error("call_status_update_failed", err, map[string]any{"order_id": o.ID})
	}
}

// SendTest pushes a test notification to the caller's own devices.
func (d *Dispatcher) SendTest(ctx context.Context, caller domain.Identity) (Outcome, error) {
	tokens, err := d.tokens.UserTokens(ctx, caller.UID)
	if err != nil {
		return Outcome{}, err
	}
	if len(tokens) == 0 {
		return Outcome{}, domain.Invalid("no devices registered for this account")
	}
	out, err := d.send(ctx, tokens, TestNotification(d.opts, d.now()))
	d.lg.Info("test_notification", map[string]any{
		"uid":     caller.UID,
		"success": out.Success,
		"failure": out.Failure,
		"pruned":  out.Pruned,
	})
	if errors.Is(err, ErrNoDelivery) {
		return out, nil
	}
	return out, err
}
