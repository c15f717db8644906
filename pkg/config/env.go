package config

const EnvPrefix = "HOMESERVICES"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SequenceBackendRedis = "redis"
	SequenceBackendDB    = "db"
)

const (
	EnvAppEnv          = "HOMESERVICES_APP_ENV"
	EnvPort            = "HOMESERVICES_APP_PORT"
	EnvDBDSN           = "HOMESERVICES_DB_DSN"
	EnvDBHost          = "HOMESERVICES_DB_HOST"
	EnvDBPort          = "HOMESERVICES_DB_PORT"
	EnvDBUser          = "HOMESERVICES_DB_USER"
	EnvDBPassword      = "HOMESERVICES_DB_PASSWORD"
	EnvDBName          = "HOMESERVICES_DB_NAME"
	EnvDBSQLitePath    = "HOMESERVICES_DB_SQLITE_PATH"
	EnvUseSQLite       = "HOMESERVICES_USE_SQLITE"
	EnvRedisURL        = "HOMESERVICES_REDIS_URL"
	EnvSequenceBackend = "HOMESERVICES_SEQUENCE_BACKEND"
	EnvKafkaBrokers    = "HOMESERVICES_KAFKA_BROKERS"
	EnvCORSOrigins     = "HOMESERVICES_CORS_ALLOWED_ORIGINS"
	EnvStatsTimezone   = "HOMESERVICES_STATS_TIMEZONE"
	EnvOutboxRetention = "HOMESERVICES_OUTBOX_RETENTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
