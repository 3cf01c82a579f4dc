package service

import (
	"context"
	"time"

	"restaurant-ordering/internal/domain"
)

// Notification is a push message, independent of the gateway that
// delivers it.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
	Web   *WebPush
}

type WebPushAction struct {
	Action string
	Title  string
}

type WebPush struct {
	Icon               string
	Badge              string
	RequireInteraction bool
	Actions            []WebPushAction
	Link               string
}

// SendResult is the gateway's verdict for one token.
type SendResult struct {
	Token        string
	MessageID    string
	Err          error
	InvalidToken bool // token is unregistered

	// InvalidArgument can mean a malformed token or a malformed message;
	// the dispatcher tells them apart by looking at the whole batch.
	InvalidArgument bool
}

type Gateway interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification) ([]SendResult, error)
}

type TokenStore interface {
	AdminTokens(ctx context.Context) ([]string, error)
	UserTokens(ctx context.Context, userID string) ([]string, error)
	DeleteTokens(ctx context.Context, tokens []string) (int64, error)
}

type OrderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
	SetCallStatus(ctx context.Context, id, status, callErr string, at time.Time) error
}

// Caller rings the admin phone and reads out twiml.
type Caller interface {
	Call(ctx context.Context, twiml string) (string, error)
}
