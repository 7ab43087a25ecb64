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
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FCM          FCMConfig
	Campaign     CampaignConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

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
	Env          string `envconfig:"KOLEKKITA_APP_ENV" required:"true"`
	Port         string `envconfig:"KOLEKKITA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KOLEKKITA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KOLEKKITA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KOLEKKITA_DB_DSN"`
	Driver string `envconfig:"KOLEKKITA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KOLEKKITA_DB_HOST"`
	LegacyPort     int    `envconfig:"KOLEKKITA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KOLEKKITA_DB_USER"`
	LegacyPassword string `envconfig:"KOLEKKITA_DB_PASSWORD"`
	LegacyName     string `envconfig:"KOLEKKITA_DB_NAME"`
	LegacySSLMode  string `envconfig:"KOLEKKITA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KOLEKKITA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KOLEKKITA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KOLEKKITA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KOLEKKITA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from the legacy host/port variables when an
// explicit DSN is not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either KOLEKKITA_DB_DSN or KOLEKKITA_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.LegacyUser),
		url.QueryEscape(d.LegacyPassword),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"KOLEKKITA_REDIS_URL"`
	Address      string        `envconfig:"KOLEKKITA_REDIS_ADDR"`
	Password     string        `envconfig:"KOLEKKITA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KOLEKKITA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KOLEKKITA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KOLEKKITA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KOLEKKITA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KOLEKKITA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KOLEKKITA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KOLEKKITA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KOLEKKITA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KOLEKKITA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKiB    uint32 `envconfig:"KOLEKKITA_ARGON_MEMORY_KIB" default:"65536"`
	ArgonTime         uint32 `envconfig:"KOLEKKITA_ARGON_TIME" default:"1"`
	ArgonParallelism  uint8  `envconfig:"KOLEKKITA_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLength   uint32 `envconfig:"KOLEKKITA_ARGON_SALT_LENGTH" default:"16"`
	ArgonKeyLength    uint32 `envconfig:"KOLEKKITA_ARGON_KEY_LENGTH" default:"32"`
	MinPasswordLength int    `envconfig:"KOLEKKITA_MIN_PASSWORD_LENGTH" default:"8"`
}

type FCMConfig struct {
	BaseURL   string        `envconfig:"KOLEKKITA_FCM_BASE_URL" default:"https://fcm.googleapis.com"`
	ServerKey string        `envconfig:"KOLEKKITA_FCM_SERVER_KEY"`
	Timeout   time.Duration `envconfig:"KOLEKKITA_FCM_TIMEOUT" default:"10s"`
}

type CampaignConfig struct {
	DedupWindow    time.Duration `envconfig:"KOLEKKITA_CAMPAIGN_DEDUP_WINDOW" default:"5s"`
	StuckThreshold time.Duration `envconfig:"KOLEKKITA_CAMPAIGN_STUCK_THRESHOLD" default:"15m"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"KOLEKKITA_CRON_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"KOLEKKITA_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"KOLEKKITA_FEATURE_AUTO_MIGRATE" default:"false"`
}
