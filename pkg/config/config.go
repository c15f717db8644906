package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Sequence     SequenceConfig
	Kafka        KafkaConfig
	Outbox       OutboxConfig
	CORS         CORSConfig
	Stats        StatsConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.SQLitePath == "" {
			return nil, fmt.Errorf("%s is required when %s is enabled", EnvDBSQLitePath, EnvUseSQLite)
		}
	} else if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Sequence.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Stats.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOMESERVICES_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMESERVICES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOMESERVICES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMESERVICES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HOMESERVICES_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"HOMESERVICES_DB_DSN"`
	Driver     string `envconfig:"HOMESERVICES_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"HOMESERVICES_DB_SQLITE_PATH" default:"file:homeservices.db?cache=shared"`

	LegacyHost     string `envconfig:"HOMESERVICES_DB_HOST"`
	LegacyPort     int    `envconfig:"HOMESERVICES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HOMESERVICES_DB_USER"`
	LegacyPassword string `envconfig:"HOMESERVICES_DB_PASSWORD"`
	LegacyName     string `envconfig:"HOMESERVICES_DB_NAME"`
	LegacySSLMode  string `envconfig:"HOMESERVICES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HOMESERVICES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HOMESERVICES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HOMESERVICES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HOMESERVICES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMESERVICES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HOMESERVICES_REDIS_ADDR"`
	Password     string        `envconfig:"HOMESERVICES_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMESERVICES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMESERVICES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMESERVICES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMESERVICES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMESERVICES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMESERVICES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HOMESERVICES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HOMESERVICES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HOMESERVICES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HOMESERVICES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HOMESERVICES_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HOMESERVICES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HOMESERVICES_AUTO_MIGRATE" default:"false"`
}

type SequenceConfig struct {
	Backend string `envconfig:"HOMESERVICES_SEQUENCE_BACKEND" default:"redis"`
}

func (s SequenceConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case SequenceBackendRedis, SequenceBackendDB:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q, got %q", EnvSequenceBackend, SequenceBackendRedis, SequenceBackendDB, s.Backend)
}

// UseDB reports whether sequences are allocated from the sequences table.
func (s SequenceConfig) UseDB() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), SequenceBackendDB)
}

type KafkaConfig struct {
	Brokers       []string `envconfig:"HOMESERVICES_KAFKA_BROKERS"`
	BookingsTopic string   `envconfig:"HOMESERVICES_KAFKA_BOOKINGS_TOPIC" default:"homeservices.bookings"`
	ClientID      string   `envconfig:"HOMESERVICES_KAFKA_CLIENT_ID" default:"homeservices"`
}

// Enabled reports whether at least one broker is configured.
func (k KafkaConfig) Enabled() bool {
	for _, b := range k.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HOMESERVICES_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HOMESERVICES_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HOMESERVICES_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HOMESERVICES_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type MaintenanceConfig struct {
	Interval        time.Duration `envconfig:"HOMESERVICES_MAINTENANCE_INTERVAL" default:"6h"`
	OutboxRetention time.Duration `envconfig:"HOMESERVICES_OUTBOX_RETENTION" default:"168h"`
	DLQRetention    time.Duration `envconfig:"HOMESERVICES_OUTBOX_DLQ_RETENTION" default:"720h"`
}

type StatsConfig struct {
	Timezone string `envconfig:"HOMESERVICES_STATS_TIMEZONE" default:"UTC"`
}

// Location resolves the timezone used to compute "today" for dashboard counters.
func (s StatsConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvStatsTimezone, name, err)
	}
	return loc, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
