package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Commerce CommerceConfig
	Server   ServerConfig
	Redis    RedisConfig
	DB       DBConfig
	JWT      JWTConfig
	Password PasswordConfig
	Metrics  MetricsConfig

	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Commerce.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTSYNC_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"CARTSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CommerceConfig points the cart store at the remote commerce service.
type CommerceConfig struct {
	BaseURL   string        `envconfig:"CARTSYNC_COMMERCE_BASE_URL" default:"http://localhost:5000/api"`
	Timeout   time.Duration `envconfig:"CARTSYNC_COMMERCE_TIMEOUT" default:"10s"`
	Token     string        `envconfig:"CARTSYNC_COMMERCE_TOKEN"`
	UserAgent string        `envconfig:"CARTSYNC_COMMERCE_USER_AGENT" default:"cartsync"`
}

func (c CommerceConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvCommerceBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvCommerceBaseURL, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvCommerceTimeout)
	}
	return nil
}

// ServerConfig configures the reference commerce service.
type ServerConfig struct {
	Port            string        `envconfig:"CARTSYNC_SERVER_PORT" default:"5000"`
	CORSOrigins     []string      `envconfig:"CARTSYNC_SERVER_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	ReadTimeout     time.Duration `envconfig:"CARTSYNC_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"CARTSYNC_SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"CARTSYNC_SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// RedisConfig is optional; an empty URL and address selects in-memory carts.
type RedisConfig struct {
	URL          string        `envconfig:"CARTSYNC_REDIS_URL"`
	Address      string        `envconfig:"CARTSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"CARTSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
	CartTTL      time.Duration `envconfig:"CARTSYNC_REDIS_CART_TTL" default:"720h"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// DBConfig is optional; when DSN is set carts are stored in SQL. Driver is
// "postgres" or "sqlite".
type DBConfig struct {
	DSN         string `envconfig:"CARTSYNC_DB_DSN"`
	Driver      string `envconfig:"CARTSYNC_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"CARTSYNC_DB_AUTO_MIGRATE" default:"false"`

	MaxOpenConns    int           `envconfig:"CARTSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTSYNC_DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTSYNC_DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

// Enabled reports whether a database was configured.
func (d DBConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != ""
}

func (d DBConfig) validate() error {
	if !d.Enabled() {
		return nil
	}
	switch strings.ToLower(d.Driver) {
	case DBDriverPostgres, DBDriverSQLite:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DBDriverPostgres, DBDriverSQLite, d.Driver)
}

type JWTConfig struct {
	Secret            string `envconfig:"CARTSYNC_JWT_SECRET" default:"dev-secret-change-me"`
	Issuer            string `envconfig:"CARTSYNC_JWT_ISSUER" default:"cartsync"`
	ExpirationMinutes int    `envconfig:"CARTSYNC_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CARTSYNC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CARTSYNC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CARTSYNC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CARTSYNC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CARTSYNC_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig throttles login attempts. Limits only apply when redis
// is configured.
type AuthRateLimitConfig struct {
	Window     time.Duration `envconfig:"CARTSYNC_AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit    int           `envconfig:"CARTSYNC_AUTH_RATE_LIMIT_IP" default:"20"`
	EmailLimit int           `envconfig:"CARTSYNC_AUTH_RATE_LIMIT_EMAIL" default:"5"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"CARTSYNC_METRICS_ENABLED" default:"true"`
}
