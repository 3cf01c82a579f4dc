package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/connections/blobstore"
	"restaurant-ordering/internal/microservices/account/service"
)

type AccountHandler struct {
	service service.AccountServiceInterface
}

func NewAccountHandler(s service.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: s}
}

func (h *AccountHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("GET /api/v1/profile", mw.User(h.Profile))
	mux.Handle("PUT /api/v1/profile", mw.User(h.UpdateProfile))
	mux.Handle("POST /api/v1/profile/photo", mw.User(h.UploadPhoto))
	mux.Handle("POST /api/v1/devices/tokens", mw.User(h.RegisterToken))
}

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	u, err := h.service.Profile(r.Context(), caller)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in service.ProfileInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), caller, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	data, ct, err := httpx.ReadUpload(w, r, "photo", blobstore.MaxObjectSize)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	u, err := h.service.UploadPhoto(r.Context(), caller, ct, data)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in service.TokenInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	t, err := h.service.RegisterToken(r.Context(), caller, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}
