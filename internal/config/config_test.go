package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimal = `
database:
  host: db
  user: app
  database: restaurant
rabbitmq:
  host: mq
  user: guest
admin:
  emails: [" Owner@Example.com "]
`

func TestParseAppliesDefaults(t *testing.T) {
	a, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if a.Database.Port != 5432 || a.Database.SSLMode != "disable" || a.Database.MaxConns != 10 {
		t.Errorf("database defaults = %+v", a.Database)
	}
	if a.RabbitMQ.Port != 5672 || a.RabbitMQ.VHost != "/" {
		t.Errorf("rabbitmq defaults = %+v", a.RabbitMQ)
	}
	if a.HTTP.Port != 3000 || a.HTTP.MaxConcurrent != 50 || a.HTTP.WriteTimeout != 30*time.Second {
		t.Errorf("http defaults = %+v", a.HTTP)
	}
	if a.HTTP.PublicBaseURL != "http://localhost:3000" {
		t.Errorf("public base url = %q", a.HTTP.PublicBaseURL)
	}
	if a.Restaurant.Currency != "INR" || a.Restaurant.CODDeliveryFee != 40 {
		t.Errorf("restaurant defaults = %+v", a.Restaurant)
	}
	if a.Admin.Emails[0] != "owner@example.com" {
		t.Errorf("admin email not normalised: %q", a.Admin.Emails[0])
	}
	if a.Razorpay.Enabled() || a.Twilio.Enabled() {
		t.Error("optional integrations enabled without credentials")
	}
}

func TestParseRejectsIncompleteConfig(t *testing.T) {
	_, err := Parse([]byte("database:\n  host: db\n"))
	if err == nil {
		t.Fatal("Parse() accepted a config without credentials")
	}
	for _, want := range []string{"database config incomplete", "rabbitmq config incomplete"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}

	_, err = Parse([]byte(minimal + "restaurant:\n  cod_delivery_fee: -1\n"))
	if err == nil || !strings.Contains(err.Error(), "negative") {
		t.Fatalf("negative fee error = %v", err)
	}
}

func TestEnvironmentOverridesSecrets(t *testing.T) {
	t.Setenv("RESTAURANT_DB_PASSWORD", "from-env")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp-secret")

	a, err := Parse([]byte(minimal + "razorpay:\n  key_id: rzp_test\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Database.Password != "from-env" {
		t.Errorf("db password = %q", a.Database.Password)
	}
	if !a.Razorpay.Enabled() {
		t.Error("razorpay should be enabled once the secret comes from the environment")
	}
}

func TestLocation(t *testing.T) {
	if got := (RestaurantConfig{}).Location(); got != time.UTC {
		t.Errorf("empty timezone = %v, want UTC", got)
	}
	if got := (RestaurantConfig{Timezone: "Nowhere/Invalid"}).Location(); got != time.UTC {
		t.Errorf("invalid timezone = %v, want UTC", got)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	a, err := Load(filepath.Join("..", "..", "deploy", "config.example.yaml"))
	if err != nil {
		t.Fatalf("Load(example) error = %v", err)
	}
	if a.Restaurant.Timezone != "Asia/Kolkata" || a.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("example config = %+v", a.Restaurant)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load(missing) succeeded")
	}
}
