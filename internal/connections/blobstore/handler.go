package blobstore

import (
	"net/http"

	"restaurant-ordering/internal/common/httpx"
)

// Handler serves GET /images/{key}. Keys are content hashes, so responses
// never change and may be cached forever.
func (s *Store) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ct, err := s.Get(r.Context(), r.PathValue("key"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", ct)
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		_, _ = w.Write(data)
	}
}
