package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	Storage    StorageConfig
	DB         DBConfig
	Redis      RedisConfig
	Storefront StorefrontConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string        `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string        `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	ShutdownWait time.Duration `envconfig:"STOREFRONT_SHUTDOWN_WAIT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// HTTPConfig tunes the local JSON API.
type HTTPConfig struct {
	CORSOrigins    []string      `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_IDEMPOTENCY_TTL" default:"24h"`
	// SweepInterval paces the purge of expired records on backends without native expiry.
	SweepInterval time.Duration `envconfig:"STOREFRONT_IDEMPOTENCY_SWEEP_INTERVAL" default:"10m"`
}

// StorageConfig selects the key-value backend that plays the role of browser local storage.
type StorageConfig struct {
	Driver      string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"memory"`
	Namespace   string `envconfig:"STOREFRONT_STORAGE_NAMESPACE"`
	AutoMigrate bool   `envconfig:"STOREFRONT_STORAGE_AUTO_MIGRATE" default:"true"`
}

// IsSQL reports whether the configured driver is backed by gorm.
func (s StorageConfig) IsSQL() bool {
	switch s.normalizedDriver() {
	case DriverSQLite, DriverPostgres:
		return true
	}
	return false
}

func (s StorageConfig) normalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}

// DriverName returns the normalized storage driver.
func (s StorageConfig) DriverName() string {
	return s.normalizedDriver()
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// StorefrontConfig carries the tunables of the collection managers.
type StorefrontConfig struct {
	PageSize            int    `envconfig:"STOREFRONT_PAGE_SIZE" default:"8"`
	CompareLimit        int    `envconfig:"STOREFRONT_COMPARE_LIMIT" default:"3"`
	RecentSearchLimit   int    `envconfig:"STOREFRONT_RECENT_SEARCH_LIMIT" default:"5"`
	StrictReviewRatings bool   `envconfig:"STOREFRONT_STRICT_REVIEW_RATINGS" default:"false"`
	CatalogPath         string `envconfig:"STOREFRONT_CATALOG_PATH"`
}

func (c *Config) validate() error {
	switch c.Storage.normalizedDriver() {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
	case DriverSQLite, DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s is required for the %s storage driver", EnvDBDSN, c.Storage.normalizedDriver())
		}
	default:
		return fmt.Errorf("unsupported storage driver %q (expected %s)", c.Storage.Driver, strings.Join(supportedDrivers, ", "))
	}

	if c.HTTP.IdempotencyTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvIdempotencyTTL)
	}
	if c.HTTP.SweepInterval <= 0 {
		return fmt.Errorf("%s must be positive", EnvSweepInterval)
	}
	if c.Storefront.PageSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvPageSize)
	}
	if c.Storefront.CompareLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvCompareLimit)
	}
	if c.Storefront.RecentSearchLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvRecentSearchLimit)
	}
	return nil
}
