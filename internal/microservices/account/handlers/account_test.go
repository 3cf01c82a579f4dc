package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-ordering/internal/domain"
	"restaurant-ordering/internal/microservices/account/service"
)

type photoRecorder struct {
	service.AccountServiceInterface
	ct   string
	size int
}

func (p *photoRecorder) UploadPhoto(_ context.Context, caller domain.Identity, ct string, data []byte) (domain.User, error) {
	p.ct, p.size = ct, len(data)
	return domain.User{ID: caller.UID, PhotoURL: "https://shop.test/images/x.png"}, nil
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "me.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPhotoSniffsContentType(t *testing.T) {
	rec := &photoRecorder{}
	h := NewAccountHandler(rec)

	body, ct := multipartBody(t, "photo", pngHeader)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/profile/photo", body)
	r.Header.Set("Content-Type", ct)
	r = r.WithContext(domain.WithIdentity(r.Context(), domain.Identity{UID: "u1"}))
	w := httptest.NewRecorder()
	h.UploadPhoto(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}
	if rec.ct != "image/png" || rec.size != len(pngHeader) {
		t.Fatalf("service saw %q / %d bytes", rec.ct, rec.size)
	}
}

func TestUploadPhotoMissingField(t *testing.T) {
	h := NewAccountHandler(&photoRecorder{})
	body, ct := multipartBody(t, "avatar", pngHeader)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/profile/photo", body)
	r.Header.Set("Content-Type", ct)
	r = r.WithContext(domain.WithIdentity(r.Context(), domain.Identity{UID: "u1"}))
	w := httptest.NewRecorder()
	h.UploadPhoto(w, r)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}
