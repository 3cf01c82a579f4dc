package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/contact/service"
)

type ContactHandler struct {
	service service.ContactServiceInterface
}

func NewContactHandler(s service.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: s}
}

func (h *ContactHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /api/v1/contact", h.Submit)
	mux.Handle("GET /api/v1/admin/messages", mw.Admin(h.List))
	mux.Handle("GET /api/v1/admin/messages/unread-count", mw.Admin(h.UnreadCount))
	mux.Handle("POST /api/v1/admin/messages/{id}/read", mw.Admin(h.MarkRead))
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.MessageInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	m, err := h.service.Submit(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"id": m.ID, "status": m.Status})
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.List(r.Context(), domain.MessageStatus(r.URL.Query().Get("status")))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *ContactHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
