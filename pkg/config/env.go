package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var supportedDrivers = []string{DriverMemory, DriverRedis, DriverSQLite, DriverPostgres}

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvLogLevel          = "STOREFRONT_LOG_LEVEL"
	EnvCORSOrigins       = "STOREFRONT_CORS_ORIGINS"
	EnvIdempotencyTTL    = "STOREFRONT_IDEMPOTENCY_TTL"
	EnvSweepInterval     = "STOREFRONT_IDEMPOTENCY_SWEEP_INTERVAL"
	EnvStorageDriver     = "STOREFRONT_STORAGE_DRIVER"
	EnvStorageNamespace  = "STOREFRONT_STORAGE_NAMESPACE"
	EnvDBDSN             = "STOREFRONT_DB_DSN"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvRedisAddr         = "STOREFRONT_REDIS_ADDR"
	EnvPageSize          = "STOREFRONT_PAGE_SIZE"
	EnvCompareLimit      = "STOREFRONT_COMPARE_LIMIT"
	EnvRecentSearchLimit = "STOREFRONT_RECENT_SEARCH_LIMIT"
	EnvStrictRatings     = "STOREFRONT_STRICT_REVIEW_RATINGS"
	EnvCatalogPath       = "STOREFRONT_CATALOG_PATH"
)
