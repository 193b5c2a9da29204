package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Values that differ per environment have no default; the rest fall back to
// something that works on a developer machine.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Firebase  FirebaseConfig
	Midtrans  MidtransConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
	Booking   BookingConfig
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	GinMode         string        `envconfig:"GIN_MODE" default:"debug"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	// "mysql" or "memory"
	Driver   string `envconfig:"DB_DRIVER" default:"mysql"`
	Host     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	Port     string `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"carenow"`
	// Seed the memory store with a demo catalog.
	Seed bool `envconfig:"DB_SEED" default:"false"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
}

type FirebaseConfig struct {
	// Empty disables FCM, Firebase Auth and Firestore tracking.
	CredentialsFile    string `envconfig:"FIREBASE_CREDENTIALS" default:""`
	ProjectID          string `envconfig:"FIREBASE_PROJECT_ID"`
	TrackingCollection string `envconfig:"FIRESTORE_TRACKING_COLLECTION" default:"booking_tracking"`
}

func (c FirebaseConfig) Enabled() bool {
	return c.CredentialsFile != ""
}

type MidtransConfig struct {
	// Empty disables Snap charges; bookings stay unpaid until settled elsewhere.
	ServerKey   string `envconfig:"MIDTRANS_SERVER_KEY"`
	Environment string `envconfig:"MIDTRANS_ENV" default:"sandbox"`
}

func (c MidtransConfig) Enabled() bool {
	return c.ServerKey != ""
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Request-ID"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,X-Request-ID"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type BookingConfig struct {
	CatalogTTL        time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	FlowSessionTTL    time.Duration `envconfig:"FLOW_SESSION_TTL" default:"30m"`
	SearchRadiusKM    float64       `envconfig:"PARTNER_SEARCH_RADIUS_KM" default:"15"`
	TrackingQueueSize int           `envconfig:"TRACKING_QUEUE_SIZE" default:"16"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

// NewTestConfig returns a config that needs no external services.
func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8889", GinMode: "test", ShutdownTimeout: time.Second},
		DB:     DBConfig{Driver: "memory"},
		JWT:    JWTConfig{Secret: "test-secret", Duration: time.Hour},
		Firebase: FirebaseConfig{
			TrackingCollection: "booking_tracking",
		},
		RateLimit: RateLimitConfig{RPS: 100, Burst: 100},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{Level: "error", Format: "json"},
		Booking: BookingConfig{
			CatalogTTL:        time.Minute,
			FlowSessionTTL:    time.Minute,
			SearchRadiusKM:    15,
			TrackingQueueSize: 16,
		},
	}
}
