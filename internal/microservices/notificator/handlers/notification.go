package handlers

import (
	"context"
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/notificator/service"
)

type TestSender interface {
	SendTest(ctx context.Context, caller domain.Identity) (service.Outcome, error)
}

type NotificationHandler struct {
	sender TestSender
}

func NewNotificationHandler(s TestSender) *NotificationHandler {
	return &NotificationHandler{sender: s}
}

func (h *NotificationHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("POST /api/v1/admin/notifications/test", mw.Admin(h.SendTest))
}

func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	out, err := h.sender.SendTest(r.Context(), caller)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
