// Package notify runs the consumer that pushes new orders to the admins.
package notify

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/tomb.v2"

	"restaurant-ordering/internal/app/api"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/common/metrics"
	"restaurant-ordering/internal/config"
	fb "restaurant-ordering/internal/connections/firebase"
	"restaurant-ordering/internal/connections/rabbitmq"
	"restaurant-ordering/internal/connections/voice"
	accountrepo "restaurant-ordering/internal/microservices/account/repository"
	"restaurant-ordering/internal/microservices/notificator"
	notifysvc "restaurant-ordering/internal/microservices/notificator/service"
	orderrepo "restaurant-ordering/internal/microservices/order/repository"
)

type Config struct {
	Consumer    string
	Prefetch    int
	MetricsPort int // 0 disables the /metrics and /healthz listener
}

// Mux serves the notifier's metrics and health.
func Mux(db api.Pinger, rmq api.BrokerPinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", api.Health(db, rmq))
	return mux
}

func Run(ctx context.Context, cfg config.App, wc Config, db *pgxpool.Pool, rmq *rabbitmq.Client, lg *logger.Logger) error {
	app, err := fb.NewApp(ctx, cfg.Firebase)
	if err != nil {
		return err
	}
	push, err := fb.NewPush(ctx, app)
	if err != nil {
		return err
	}

	var caller notifysvc.Caller
	if cfg.Twilio.Enabled() {
		caller = voice.NewTwilio(cfg.Twilio)
	}

	dispatcher := notifysvc.NewDispatcher(
		push,
		accountrepo.NewAccountRepository(db),
		orderrepo.NewOrderRepository(db),
		caller,
		api.PayloadOptions(cfg),
		lg,
	)
	lg.Info("service_started", map[string]any{
		"service":      "notifier",
		"consumer":     wc.Consumer,
		"prefetch":     wc.Prefetch,
		"calls":        caller != nil,
		"metrics_port": wc.MetricsPort,
	})

	t, tctx := tomb.WithContext(ctx)
	if wc.MetricsPort != 0 {
		srv := httpx.New(":"+strconv.Itoa(wc.MetricsPort), Mux(db, rmq), cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
		t.Go(func() error { return srv.Run(tctx) })
	}
	t.Go(func() error {
		return notificator.Start(tctx, rmq, dispatcher, notificator.Config{
			Queue:    rabbitmq.NotificationsQ,
			Consumer: wc.Consumer,
			Prefetch: wc.Prefetch,
		}, lg)
	})
	if err := t.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
