package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "RAFFLE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config aggregates every configurable concern of the service.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

// Load reads configuration from the environment and normalizes derived values.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RAFFLE_APP_ENV" required:"true"`
	Port         string `envconfig:"RAFFLE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RAFFLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RAFFLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RAFFLE_DB_DSN"`
	Driver string `envconfig:"RAFFLE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RAFFLE_DB_HOST"`
	Port     int    `envconfig:"RAFFLE_DB_PORT" default:"5432"`
	User     string `envconfig:"RAFFLE_DB_USER"`
	Password string `envconfig:"RAFFLE_DB_PASSWORD"`
	Name     string `envconfig:"RAFFLE_DB_NAME"`
	SSLMode  string `envconfig:"RAFFLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RAFFLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RAFFLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RAFFLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RAFFLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"RAFFLE_DB_AUTO_MIGRATE" default:"false"`
}

// ensureDSN assembles a postgres URL from discrete fields when no DSN was provided.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"RAFFLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RAFFLE_REDIS_ADDR"`
	Password     string        `envconfig:"RAFFLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"RAFFLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RAFFLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RAFFLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RAFFLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RAFFLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RAFFLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RAFFLE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RAFFLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RAFFLE_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"RAFFLE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKiB    uint32 `envconfig:"RAFFLE_PASSWORD_ARGON_MEMORY_KIB" default:"65536"`
	ArgonTime         uint32 `envconfig:"RAFFLE_PASSWORD_ARGON_TIME" default:"3"`
	ArgonParallelism  uint8  `envconfig:"RAFFLE_PASSWORD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLength   uint32 `envconfig:"RAFFLE_PASSWORD_ARGON_SALT_LENGTH" default:"16"`
	ArgonKeyLength    uint32 `envconfig:"RAFFLE_PASSWORD_ARGON_KEY_LENGTH" default:"32"`
	MinLength         int    `envconfig:"RAFFLE_PASSWORD_MIN_LENGTH" default:"10"`
	TempPasswordBytes int    `envconfig:"RAFFLE_PASSWORD_TEMP_BYTES" default:"12"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"RAFFLE_AUTH_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"RAFFLE_AUTH_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"RAFFLE_AUTH_LOGIN_EMAIL_LIMIT" default:"8"`
}

type CartConfig struct {
	// MinQuantity is the floor UpdateQuantity clamps to; removal is a separate action.
	MinQuantity int           `envconfig:"RAFFLE_CART_MIN_QUANTITY" default:"1"`
	TTL         time.Duration `envconfig:"RAFFLE_CART_TTL" default:"6h"`
	SweepEvery  time.Duration `envconfig:"RAFFLE_CART_SWEEP_EVERY" default:"15m"`
}

type CheckoutConfig struct {
	// HomeCountry is the ISO country code domestic buyers order from.
	HomeCountry string `envconfig:"RAFFLE_CHECKOUT_HOME_COUNTRY" default:"US"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RAFFLE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RAFFLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"RAFFLE_GCS_BUCKET"`
}

type MediaConfig struct {
	MaxUploadBytes int64 `envconfig:"RAFFLE_MEDIA_MAX_UPLOAD_BYTES" default:"10485760"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"RAFFLE_PUBSUB_ORDER_EVENTS_TOPIC" default:"order-events"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"RAFFLE_OUTBOX_POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"RAFFLE_OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"RAFFLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"RAFFLE_CRON_INTERVAL" default:"5m"`
	LockTTL     time.Duration `envconfig:"RAFFLE_CRON_LOCK_TTL" default:"4m"`
	MetricsPort string        `envconfig:"RAFFLE_CRON_METRICS_PORT" default:"9090"`
}
