package order

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/microservices/order/handlers"
	"restaurant-ordering/internal/microservices/order/repository"
	"restaurant-ordering/internal/microservices/order/service"
)

// Deps are the collaborators checkout needs from the other services.
type Deps struct {
	Carts    service.CartStore
	Status   service.Availability
	Profiles service.Profiles
	Payments service.PaymentGateway // nil disables online payments
	Events   service.Publisher
	Options  service.Options
}

// Mount registers the storefront order routes and returns the repository
// so the admin side can share it.
func Mount(mux *http.ServeMux, mw *auth.Middleware, db *pgxpool.Pool, deps Deps, lg *logger.Logger) repository.OrderRepositoryInterface {
	repo := repository.NewOrderRepository(db)
	svc := service.NewOrderService(repo, deps.Carts, deps.Status, deps.Profiles, deps.Payments, deps.Events, deps.Options, lg)
	handlers.NewOrderHandler(svc).Register(mux, mw)
	return repo
}
