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
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mask     MaskConfig
	Checkout CheckoutConfig
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
	Env          string `envconfig:"SCANPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"SCANPOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SCANPOS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SCANPOS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SCANPOS_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SCANPOS_AUTO_MIGRATE" default:"false"`

	CORSOrigins []string `envconfig:"SCANPOS_CORS_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCANPOS_DB_DSN"`
	Driver string `envconfig:"SCANPOS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SCANPOS_DB_HOST"`
	Port     int    `envconfig:"SCANPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"SCANPOS_DB_USER"`
	Password string `envconfig:"SCANPOS_DB_PASSWORD"`
	Name     string `envconfig:"SCANPOS_DB_NAME"`
	SSLMode  string `envconfig:"SCANPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCANPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCANPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCANPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCANPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local single-file driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SCANPOS_REDIS_URL"`
	Address      string        `envconfig:"SCANPOS_REDIS_ADDR"`
	Password     string        `envconfig:"SCANPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCANPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCANPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCANPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCANPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCANPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCANPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret   string        `envconfig:"SCANPOS_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"SCANPOS_JWT_ISSUER" required:"true"`
	TokenTTL time.Duration `envconfig:"SCANPOS_JWT_TOKEN_TTL" default:"12h"`
}

// MaskConfig holds the secret used to derive the identifier masking key.
type MaskConfig struct {
	Secret string `envconfig:"SCANPOS_MASK_SECRET" required:"true"`
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"SCANPOS_CHECKOUT_IDEMPOTENCY_TTL" default:"168h"`
	ReceiptPrefix  string        `envconfig:"SCANPOS_RECEIPT_PREFIX" default:"RCPT"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
