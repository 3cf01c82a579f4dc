package handlers

import (
	"net/http"

	"restaurant-ordering/internal/common/auth"
	"restaurant-ordering/internal/common/httpx"
	"restaurant-ordering/internal/connections/blobstore"
	"restaurant-ordering/internal/microservices/menu/service"
)

type MenuHandler struct {
	service service.MenuServiceInterface
}

func NewMenuHandler(s service.MenuServiceInterface) *MenuHandler {
	return &MenuHandler{service: s}
}

// Register mounts the storefront and admin menu routes.
func (h *MenuHandler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("GET /api/v1/menu", h.List)
	mux.HandleFunc("GET /api/v1/menu/categories", h.Categories)
	mux.HandleFunc("GET /api/v1/menu/{id}", h.Get)
	mux.HandleFunc("GET /api/v1/menu/{id}/reviews", h.Reviews)
	mux.Handle("POST /api/v1/menu/{id}/reviews", mw.User(h.AddReview))

	mux.Handle("GET /api/v1/admin/menu", mw.Admin(h.ListAll))
	mux.Handle("POST /api/v1/admin/menu", mw.Admin(h.Create))
	mux.Handle("PUT /api/v1/admin/menu/{id}", mw.Admin(h.Update))
	mux.Handle("DELETE /api/v1/admin/menu/{id}", mw.Admin(h.Delete))
	mux.Handle("POST /api/v1/admin/menu/{id}/availability", mw.Admin(h.Toggle))
	mux.Handle("POST /api/v1/admin/menu/{id}/image", mw.Admin(h.UploadImage))
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.service.ListAvailable(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.service.Categories(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cats)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.MenuItemInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.MenuItemInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := h.service.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.ToggleAvailability(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	data, ct, err := httpx.ReadUpload(w, r, "image", blobstore.MaxObjectSize)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	item, err := h.service.UploadImage(r.Context(), r.PathValue("id"), ct, data)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.Reviews(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews)
}

func (h *MenuHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.Caller(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	var in service.ReviewInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	rv, err := h.service.AddReview(r.Context(), caller, r.PathValue("id"), in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}
