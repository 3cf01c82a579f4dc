package tracker

import (
	"net/http"
	"time"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/logger"
	"restaurant-ordering/internal/microservices/tracker/handler"
	"restaurant-ordering/internal/microservices/tracker/service"
)

// Mount registers the admin order board and revenue stats.
func Mount(mux *http.ServeMux, mw *auth.Middleware, orders service.OrderStore, loc *time.Location, lg *logger.Logger) {
	svc := service.NewTrackerService(orders, loc, lg)
	handler.NewTrackerHandler(svc).Register(mux, mw)
}
