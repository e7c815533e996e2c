package config

const EnvPrefix = "CARTSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "CARTSYNC_APP_ENV"
	EnvLogLevel        = "CARTSYNC_LOG_LEVEL"
	EnvCommerceBaseURL = "CARTSYNC_COMMERCE_BASE_URL"
	EnvCommerceTimeout = "CARTSYNC_COMMERCE_TIMEOUT"
	EnvCommerceToken   = "CARTSYNC_COMMERCE_TOKEN"
	EnvServerPort      = "CARTSYNC_SERVER_PORT"
	EnvCORSOrigins     = "CARTSYNC_SERVER_CORS_ORIGINS"
	EnvRedisURL        = "CARTSYNC_REDIS_URL"
	EnvDBDSN           = "CARTSYNC_DB_DSN"
	EnvDBDriver        = "CARTSYNC_DB_DRIVER"
	EnvJWTSecret       = "CARTSYNC_JWT_SECRET"
	EnvJWTIssuer       = "CARTSYNC_JWT_ISSUER"
	EnvJWTExpMins      = "CARTSYNC_JWT_EXPIRATION_MINUTES"
)
