package notificator

import (
	"context"
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/microservices/notificator/handlers"
	"restaurant-ordering/internal/microservices/notificator/service"
)

type Config struct {
	Queue    string
	Consumer string
	Prefetch int
}

// Start consumes order.placed events until ctx is cancelled.
func Start(ctx context.Context, broker service.Broker, dispatcher *service.Dispatcher, cfg Config, lg *logger.Logger) error {
	svc := service.NewNotificatorService(broker, dispatcher, cfg.Queue, cfg.Consumer, cfg.Prefetch, lg)
	return svc.Run(ctx)
}

// Mount exposes the admin test push.
func Mount(mux *http.ServeMux, mw *auth.Middleware, dispatcher *service.Dispatcher) {
	handlers.NewNotificationHandler(dispatcher).Register(mux, mw)
}
