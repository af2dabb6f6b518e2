package config

const EnvPrefix = "SCANPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv      = "SCANPOS_APP_ENV"
	EnvPort        = "SCANPOS_APP_PORT"
	EnvLogLevel    = "SCANPOS_LOG_LEVEL"
	EnvAutoMigrate = "SCANPOS_AUTO_MIGRATE"

	EnvDBDSN    = "SCANPOS_DB_DSN"
	EnvDBDriver = "SCANPOS_DB_DRIVER"
	EnvDBHost   = "SCANPOS_DB_HOST"
	EnvDBUser   = "SCANPOS_DB_USER"
	EnvDBName   = "SCANPOS_DB_NAME"

	EnvRedisURL = "SCANPOS_REDIS_URL"

	EnvJWTSecret = "SCANPOS_JWT_SECRET"
	EnvJWTIssuer = "SCANPOS_JWT_ISSUER"

	EnvMaskSecret = "SCANPOS_MASK_SECRET"

	EnvCheckoutIdempotencyTTL = "SCANPOS_CHECKOUT_IDEMPOTENCY_TTL"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
