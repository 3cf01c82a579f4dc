package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/microservices/cart/service"
)

type CartHandler struct {
	service service.CartServiceInterface
}

func NewCartHandler(s service.CartServiceInterface) *CartHandler {
	return &CartHandler{service: s}
}

func (h *CartHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("GET /api/v1/cart", mw.User(h.Get))
	mux.Handle("DELETE /api/v1/cart", mw.User(h.Clear))
	mux.Handle("POST /api/v1/cart/items", mw.User(h.Add))
	mux.Handle("PATCH /api/v1/cart/items/{menu_item_id}", mw.User(h.SetQuantity))
	mux.Handle("DELETE /api/v1/cart/items/{menu_item_id}", mw.User(h.Remove))
}

type addRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	cart, err := h.service.Get(r.Context(), caller.UID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req addRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	cart, err := h.service.Add(r.Context(), caller.UID, req.MenuItemID, req.Quantity)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req quantityRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	cart, err := h.service.SetQuantity(r.Context(), caller.UID, r.PathValue("menu_item_id"), req.Quantity)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	cart, err := h.service.Remove(r.Context(), caller.UID, r.PathValue("menu_item_id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.service.Clear(r.Context(), caller.UID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
