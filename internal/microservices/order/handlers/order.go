package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	dto "restaurant-ordering/internal/microservices/order/domain/dto"
	"restaurant-ordering/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

func (oh *OrderHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("POST /api/v1/checkout", mw.User(oh.Checkout))
	mux.Handle("GET /api/v1/orders", mw.User(oh.History))
	mux.Handle("GET /api/v1/orders/{id}", mw.User(oh.Get))
	mux.Handle("GET /api/v1/orders/{id}/timeline", mw.User(oh.Timeline))
	mux.Handle("POST /api/v1/orders/{id}/payment/confirm", mw.User(oh.ConfirmPayment))
	mux.Handle("POST /api/v1/orders/{id}/payment/cancel", mw.User(oh.CancelPayment))
}

func (oh *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.CheckoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	resp, err := oh.service.Checkout(r.Context(), caller, req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func (oh *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	orders, err := oh.service.History(r.Context(), caller)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (oh *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	o, err := oh.service.Get(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (oh *OrderHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	tl, err := oh.service.Timeline(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tl)
}

func (oh *OrderHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.ConfirmPaymentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	o, err := oh.service.ConfirmPayment(r.Context(), caller, r.PathValue("id"), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (oh *OrderHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	o, err := oh.service.CancelPayment(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}
