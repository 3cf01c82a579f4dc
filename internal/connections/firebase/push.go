package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"restaurant-ordering/internal/microservices/notificator/service"
)

// Push delivers notifications through Firebase Cloud Messaging.
type Push struct {
	client *messaging.Client
}

func NewPush(ctx context.Context, app *firebase.App) (*Push, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &Push{client: client}, nil
}

// SendMulticast sends n to every token and reports the outcome per token,
// in the same order as tokens.
func (p *Push) SendMulticast(ctx context.Context, tokens []string, n service.Notification) ([]service.SendResult, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   n.Data,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Webpush: webpushConfig(n.Web),
	}
	resp, err := p.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast: %w", err)
	}

	out := make([]service.SendResult, len(tokens))
	for i, r := range resp.Responses {
		if i >= len(tokens) {
			break
		}
		out[i] = service.SendResult{Token: tokens[i], MessageID: r.MessageID}
		if !r.Success {
			out[i].Err = r.Error
			out[i].InvalidToken = messaging.IsUnregistered(r.Error)
			out[i].InvalidArgument = messaging.IsInvalidArgument(r.Error)
		}
	}
	return out, nil
}

func webpushConfig(w *service.WebPush) *messaging.WebpushConfig {
	if w == nil {
		return nil
	}
	actions := make([]*messaging.WebpushNotificationAction, 0, len(w.Actions))
	for _, a := range w.Actions {
		actions = append(actions, &messaging.WebpushNotificationAction{Action: a.Action, Title: a.Title})
	}
	cfg := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Icon:               w.Icon,
			Badge:              w.Badge,
			RequireInteraction: w.RequireInteraction,
			Actions:            actions,
		},
	}
	if w.Link != "" {
		cfg.FCMOptions = &messaging.WebpushFCMOptions{Link: w.Link}
	}
	return cfg
}
