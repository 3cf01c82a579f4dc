package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant-ordering/internal/config"
)

type dbPing struct{ err error }

func (p dbPing) Ping(context.Context) error { return p.err }

type mqPing struct{ err error }

func (p mqPing) Ping() error { return p.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(dbPing{}, mqPing{})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthy code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Health(dbPing{}, mqPing{err: errors.New("rabbitmq connection is closed")})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded code = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["database"] != "ok" || body["rabbitmq"] == "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestPayloadOptions(t *testing.T) {
	var cfg config.App
	cfg.Restaurant.Name = "Pitta's Bawarchi"
	cfg.Restaurant.Currency = "INR"
	cfg.HTTP.PublicBaseURL = "https://pittas.example"

	got := PayloadOptions(cfg)
	if got.RestaurantName != cfg.Restaurant.Name || got.Currency != "INR" || got.BaseURL != "https://pittas.example" {
		t.Fatalf("PayloadOptions() = %+v", got)
	}
}
