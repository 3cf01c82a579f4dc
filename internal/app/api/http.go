// Package api assembles the HTTP surface: storefront, admin, images,
// health and metrics.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/common/metrics"
	"restaurant-ordering/internal/config"
	"restaurant-ordering/internal/connections/blobstore"
	fb "restaurant-ordering/internal/connections/firebase"
	"restaurant-ordering/internal/connections/payment"
	"restaurant-ordering/internal/connections/rabbitmq"
	accounth "restaurant-ordering/internal/microservices/account/handlers"
	accountrepo "restaurant-ordering/internal/microservices/account/repository"
	accountsvc "restaurant-ordering/internal/microservices/account/service"
	carth "restaurant-ordering/internal/microservices/cart/handlers"
	cartrepo "restaurant-ordering/internal/microservices/cart/repository"
	cartsvc "restaurant-ordering/internal/microservices/cart/service"
	contacth "restaurant-ordering/internal/microservices/contact/handlers"
	contactrepo "restaurant-ordering/internal/microservices/contact/repository"
	contactsvc "restaurant-ordering/internal/microservices/contact/service"
	menuh "restaurant-ordering/internal/microservices/menu/handlers"
	menurepo "restaurant-ordering/internal/microservices/menu/repository"
	menusvc "restaurant-ordering/internal/microservices/menu/service"
	"restaurant-ordering/internal/microservices/notificator"
	notifysvc "restaurant-ordering/internal/microservices/notificator/service"
	"restaurant-ordering/internal/microservices/order"
	ordersvc "restaurant-ordering/internal/microservices/order/service"
	statush "restaurant-ordering/internal/microservices/restaurant/handlers"
	statusrepo "restaurant-ordering/internal/microservices/restaurant/repository"
	statussvc "restaurant-ordering/internal/microservices/restaurant/service"
	"restaurant-ordering/internal/microservices/tracker"
)

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg config.App, db *pgxpool.Pool, rmq *rabbitmq.Client, lg *logger.Logger) error {
	app, err := fb.NewApp(ctx, cfg.Firebase)
	if err != nil {
		return err
	}
	verifier, err := fb.NewVerifier(ctx, app, cfg.Admin.Emails)
	if err != nil {
		return err
	}
	push, err := fb.NewPush(ctx, app)
	if err != nil {
		return err
	}

	images, err := blobstore.Open(cfg.Storage.Path, cfg.HTTP.PublicBaseURL)
	if err != nil {
		return err
	}
	defer images.Close()

	var payments ordersvc.PaymentGateway
	if cfg.Razorpay.Enabled() {
		payments = payment.NewRazorpay(cfg.Razorpay)
	} else {
		lg.Warn("online_payments_disabled", map[string]any{"reason": "razorpay keys not configured"})
	}

	accounts := accountrepo.NewAccountRepository(db)
	accountService := accountsvc.NewAccountService(accounts, images)
	mw := auth.New(verifier, accountService, lg)

	mux := http.NewServeMux()

	menuService := menusvc.NewMenuService(menurepo.NewMenuRepository(db), images)
	cartService := cartsvc.NewCartService(cartrepo.NewCartRepository(db), menuService)
	statusService := statussvc.NewStatusService(statusrepo.NewStatusRepository(db), lg)

	menuh.NewMenuHandler(menuService).Register(mux, mw)
	carth.NewCartHandler(cartService).Register(mux, mw)
	statush.NewStatusHandler(statusService).Register(mux, mw)
	accounth.NewAccountHandler(accountService).Register(mux, mw)
	contacth.NewContactHandler(contactsvc.NewContactService(contactrepo.NewMessageRepository(db))).Register(mux, mw)

	loc := cfg.Restaurant.Location()
	orders := order.Mount(mux, mw, db, order.Deps{
		Carts:    cartService,
		Status:   statusService,
		Profiles: accounts,
		Payments: payments,
		Events:   rabbitmq.NewEventPublisher(rmq, "api"),
		Options: ordersvc.Options{
			RestaurantName:    cfg.Restaurant.Name,
			Currency:          cfg.Restaurant.Currency,
			CODDeliveryFee:    cfg.Restaurant.CODDeliveryFee,
			OnlineDeliveryFee: cfg.Restaurant.OnlineDeliveryFee,
			Location:          loc,
		},
	}, lg)
	tracker.Mount(mux, mw, orders, loc, lg)

	dispatcher := notifysvc.NewDispatcher(push, accounts, orders, nil, PayloadOptions(cfg), lg)
	notificator.Mount(mux, mw, dispatcher)

	mux.HandleFunc("GET /images/{key}", images.Handler())
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", Health(db, rmq))

	h := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.Observe(lg, mux),
		httpx.LimitConcurrency(cfg.HTTP.MaxConcurrent),
	)
	srv := httpx.New(":"+strconv.Itoa(cfg.HTTP.Port), h, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
	lg.Info("service_started", map[string]any{
		"service":        "api",
		"port":           cfg.HTTP.Port,
		"max_concurrent": cfg.HTTP.MaxConcurrent,
		"payments":       payments != nil,
	})
	return srv.Run(ctx)
}

// PayloadOptions derives the notification settings shared by the API and
// the notifier.
func PayloadOptions(cfg config.App) notifysvc.PayloadOptions {
	return notifysvc.PayloadOptions{
		RestaurantName: cfg.Restaurant.Name,
		Currency:       cfg.Restaurant.Currency,
		BaseURL:        cfg.HTTP.PublicBaseURL,
	}
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type BrokerPinger interface {
	Ping() error
}

// Health reports 503 while the database or the broker is unreachable.
func Health(db Pinger, rmq BrokerPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"database": "ok", "rabbitmq": "ok"}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := rmq.Ping(); err != nil {
			checks["rabbitmq"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, checks)
	}
}
