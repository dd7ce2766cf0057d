package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Finance       FinanceConfig
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
	Env          string `envconfig:"GRANITELEDGER_APP_ENV" required:"true"`
	Port         string `envconfig:"GRANITELEDGER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GRANITELEDGER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRANITELEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GRANITELEDGER_DB_DSN"`
	Driver string `envconfig:"GRANITELEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRANITELEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"GRANITELEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRANITELEDGER_DB_USER"`
	LegacyPassword string `envconfig:"GRANITELEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRANITELEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRANITELEDGER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GRANITELEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRANITELEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRANITELEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRANITELEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRANITELEDGER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GRANITELEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"GRANITELEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRANITELEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRANITELEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRANITELEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRANITELEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRANITELEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRANITELEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GRANITELEDGER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GRANITELEDGER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GRANITELEDGER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GRANITELEDGER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GRANITELEDGER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GRANITELEDGER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GRANITELEDGER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GRANITELEDGER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GRANITELEDGER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GRANITELEDGER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"GRANITELEDGER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"GRANITELEDGER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GRANITELEDGER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GRANITELEDGER_AUTO_MIGRATE" default:"false"`
}

// FinanceConfig seeds the AppSettings row on first boot. Runtime values live in
// the app_settings table and are edited through the API, not the environment.
type FinanceConfig struct {
	DefaultCommissionRate float64 `envconfig:"GRANITELEDGER_DEFAULT_COMMISSION_RATE" default:"35"`
	DefaultOtherFees      float64 `envconfig:"GRANITELEDGER_DEFAULT_OTHER_FEES" default:"0"`
	CurrencyCode          string  `envconfig:"GRANITELEDGER_CURRENCY_CODE" default:"GNF"`
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
