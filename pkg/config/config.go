package config

import (
	"time"
)

// DB holds database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Jwt holds token verification settings for protected routes.
// Token issuance happens upstream; this service only verifies.
type Jwt struct {
	Secret string `envconfig:"SECRET" required:"true"`
}

// Redis holds Redis connection settings, shared by the Daraja token cache
// and the redis event bus driver.
type Redis struct {
	URL          string        `envconfig:"URL"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:""`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// RateLimit configures the request rate limiter.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Mpesa holds Daraja API credentials and endpoints.
type Mpesa struct {
	Env            string        `envconfig:"ENV" default:"sandbox"`
	BaseURL        string        `envconfig:"BASE_URL" default:"https://sandbox.safaricom.co.ke"`
	ConsumerKey    string        `envconfig:"CONSUMER_KEY"`
	ConsumerSecret string        `envconfig:"CONSUMER_SECRET"`
	ShortCode      string        `envconfig:"SHORTCODE" default:"174379"`
	Passkey        string        `envconfig:"PASSKEY"`
	CallbackURL    string        `envconfig:"CALLBACK_URL"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	TokenCacheKey  string        `envconfig:"TOKEN_CACHE_KEY" default:"daraja:token"`
}

// Session configures QR session lifetime.
type Session struct {
	TTL time.Duration `envconfig:"TTL" default:"5m"`
}

// Reconcile configures the pending-transaction sweep. PendingTimeout should
// match the processor's own STK prompt timeout.
type Reconcile struct {
	PendingTimeout time.Duration `envconfig:"PENDING_TIMEOUT" default:"3m"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`
}

// EventBus selects the event bus driver.
type EventBus struct {
	Driver       string `envconfig:"DRIVER" default:"memory"`
	Stream       string `envconfig:"STREAM" default:"pesaflow.events"`
	Group        string `envconfig:"GROUP" default:"pesaflow"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
}

// Log configures the structured logger.
type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[pesaflow]"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// App is the root configuration.
type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Jwt       *Jwt       `envconfig:"JWT"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Mpesa     *Mpesa     `envconfig:"MPESA"`
	Session   *Session   `envconfig:"SESSION"`
	Reconcile *Reconcile `envconfig:"RECONCILE"`
	EventBus  *EventBus  `envconfig:"EVENT_BUS"`
}
