package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, b)
	}
	return m
}

func TestInfoCarriesServiceAndAction(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter("api", &buf)
	lg.Info("order_placed", map[string]any{"order_id": "abc"})

	m := decode(t, buf.Bytes())
	for key, want := range map[string]string{
		"level":    "INFO",
		"service":  "api",
		"action":   "order_placed",
		"message":  "order_placed",
		"order_id": "abc",
	} {
		if got, _ := m[key].(string); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if _, ok := m["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestErrorNestsMessage(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("notifier", &buf).Error("send_failed", errors.New("boom"), nil)

	m := decode(t, buf.Bytes())
	if m["level"] != "ERROR" {
		t.Fatalf("level = %v, want ERROR", m["level"])
	}
	e, ok := m["error"].(map[string]any)
	if !ok || e["msg"] != "boom" {
		t.Fatalf("error = %v, want {msg: boom}", m["error"])
	}
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("api", &buf).WithRequestID("req-1").Warn("slow", nil)

	m := decode(t, buf.Bytes())
	if m["request_id"] != "req-1" {
		t.Fatalf("request_id = %v, want req-1", m["request_id"])
	}
}
