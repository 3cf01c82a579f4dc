package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// App holds every setting the binary needs, across all modes.
type App struct {
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	HTTP       HTTPConfig       `yaml:"http"`
	Restaurant RestaurantConfig `yaml:"restaurant"`
	Admin      AdminConfig      `yaml:"admin"`
	Firebase   FirebaseConfig   `yaml:"firebase"`
	Razorpay   RazorpayConfig   `yaml:"razorpay"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	Storage    StorageConfig    `yaml:"storage"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"tls"`
}

type HTTPConfig struct {
	Port          int           `yaml:"port"`
	PublicBaseURL string        `yaml:"public_base_url"`
	MaxConcurrent int           `yaml:"max_concurrent"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

type RestaurantConfig struct {
	Name              string  `yaml:"name"`
	Currency          string  `yaml:"currency"`
	CODDeliveryFee    float64 `yaml:"cod_delivery_fee"`
	OnlineDeliveryFee float64 `yaml:"online_delivery_fee"`
	Timezone          string  `yaml:"timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (r RestaurantConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type AdminConfig struct {
	Emails []string `yaml:"emails"`
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type RazorpayConfig struct {
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
}

// Enabled reports whether online payments can be taken.
func (r RazorpayConfig) Enabled() bool { return r.KeyID != "" && r.KeySecret != "" }

type TwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	FromNumber  string `yaml:"from_number"`
	AdminNumber string `yaml:"admin_number"`
}

// Enabled reports whether the admin phone should be called for new orders.
func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != "" && t.AdminNumber != ""
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

// secrets that may come from the environment instead of the file
var envOverrides = []struct {
	name string
	set  func(*App, string)
}{
	{"RESTAURANT_DB_PASSWORD", func(a *App, v string) { a.Database.Password = v }},
	{"RESTAURANT_RABBITMQ_PASSWORD", func(a *App, v string) { a.RabbitMQ.Password = v }},
	{"RAZORPAY_KEY_SECRET", func(a *App, v string) { a.Razorpay.KeySecret = v }},
	{"TWILIO_AUTH_TOKEN", func(a *App, v string) { a.Twilio.AuthToken = v }},
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result.
func Load(path string) (App, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return App{}, fmt.Errorf("couldn't open the configuration file: %w", err)
	}
	return Parse(b)
}

// Parse is Load without the file read.
func Parse(b []byte) (App, error) {
	var a App
	if err := yaml.Unmarshal(b, &a); err != nil {
		return App{}, fmt.Errorf("error reading config: %w", err)
	}
	a.applyDefaults()
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			o.set(&a, v)
		}
	}
	if err := a.Validate(); err != nil {
		return App{}, err
	}
	return a, nil
}

func (a *App) applyDefaults() {
	if a.Database.Port == 0 {
		a.Database.Port = 5432
	}
	if a.Database.SSLMode == "" {
		a.Database.SSLMode = "disable"
	}
	if a.Database.MaxConns == 0 {
		a.Database.MaxConns = 10
	}
	if a.RabbitMQ.Port == 0 {
		a.RabbitMQ.Port = 5672
	}
	if a.RabbitMQ.VHost == "" {
		a.RabbitMQ.VHost = "/"
	}
	if a.HTTP.Port == 0 {
		a.HTTP.Port = 3000
	}
	if a.HTTP.MaxConcurrent == 0 {
		a.HTTP.MaxConcurrent = 50
	}
	if a.HTTP.ReadTimeout == 0 {
		a.HTTP.ReadTimeout = 5 * time.Second
	}
	if a.HTTP.WriteTimeout == 0 {
		a.HTTP.WriteTimeout = 30 * time.Second
	}
	if a.HTTP.PublicBaseURL == "" {
		a.HTTP.PublicBaseURL = fmt.Sprintf("http://localhost:%d", a.HTTP.Port)
	}
	a.HTTP.PublicBaseURL = strings.TrimRight(a.HTTP.PublicBaseURL, "/")
	if a.Restaurant.Name == "" {
		a.Restaurant.Name = "Pitta's Bawarchi"
	}
	if a.Restaurant.Currency == "" {
		a.Restaurant.Currency = "INR"
	}
	if a.Restaurant.CODDeliveryFee == 0 {
		a.Restaurant.CODDeliveryFee = 40
	}
	if a.Storage.Path == "" {
		a.Storage.Path = "data/blobs.db"
	}
	for i, e := range a.Admin.Emails {
		a.Admin.Emails[i] = strings.ToLower(strings.TrimSpace(e))
	}
}

// Validate checks the settings every mode depends on.
func (a App) Validate() error {
	var errs []error
	if a.Database.Host == "" || a.Database.User == "" || a.Database.Database == "" {
		errs = append(errs, errors.New("database config incomplete: host, user and database are required"))
	}
	if a.RabbitMQ.Host == "" || a.RabbitMQ.User == "" {
		errs = append(errs, errors.New("rabbitmq config incomplete: host and user are required"))
	}
	if a.Restaurant.CODDeliveryFee < 0 || a.Restaurant.OnlineDeliveryFee < 0 {
		errs = append(errs, errors.New("delivery fees must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// FindConfig returns the first config file present in the usual places.
func FindConfig() (string, error) {
	candidates := []string{"config.yaml", "config.yml", "deploy/config.example.yaml"}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
