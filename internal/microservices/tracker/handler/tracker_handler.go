package handler

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	dto "restaurant-ordering/internal/microservices/order/domain/dto"
	"restaurant-ordering/internal/microservices/tracker/models"
	"restaurant-ordering/internal/microservices/tracker/service"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
}

func NewTrackerHandler(svc service.TrackerServiceInterface) *TrackerHandler {
	return &TrackerHandler{service: svc}
}

func (h *TrackerHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("GET /api/v1/admin/orders", mw.Admin(h.ListOrders))
	mux.Handle("PATCH /api/v1/admin/orders/{id}/status", mw.Admin(h.UpdateStatus))
	mux.Handle("GET /api/v1/admin/stats", mw.Admin(h.Stats))
}

func (h *TrackerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListOrders(r.Context(), models.View(r.URL.Query().Get("view")))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *TrackerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	admin, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req dto.StatusUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), admin, r.PathValue("id"), req.Status, req.Notes)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *TrackerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
