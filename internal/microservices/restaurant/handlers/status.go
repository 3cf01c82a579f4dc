package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/restaurant/service"
)

type StatusHandler struct {
	service service.StatusServiceInterface
}

func NewStatusHandler(s service.StatusServiceInterface) *StatusHandler {
	return &StatusHandler{service: s}
}

func (h *StatusHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/restaurant/status", h.Get)
	mux.Handle("PUT /api/v1/admin/restaurant/status", mw.Admin(h.Set))
	mux.Handle("POST /api/v1/admin/restaurant/toggle", mw.Admin(h.Toggle))
}

type setRequest struct {
	IsOpen *bool `json:"is_open"`
}

func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Get(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *StatusHandler) Set(w http.ResponseWriter, r *http.Request) {
	admin, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var req setRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if req.IsOpen == nil {
		httpx.WriteError(w, domain.Invalid("is_open is required"))
		return
	}
	st, err := h.service.Set(r.Context(), admin, *req.IsOpen)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *StatusHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	admin, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	st, err := h.service.Toggle(r.Context(), admin)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
