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
	Cart          CartConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"BOOKSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKSTORE_DB_DSN"`
	Driver string `envconfig:"BOOKSTORE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BOOKSTORE_DB_HOST"`
	Port     int    `envconfig:"BOOKSTORE_DB_PORT" default:"5432"`
	User     string `envconfig:"BOOKSTORE_DB_USER"`
	Password string `envconfig:"BOOKSTORE_DB_PASSWORD"`
	Name     string `envconfig:"BOOKSTORE_DB_NAME"`
	SSLMode  string `envconfig:"BOOKSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BOOKSTORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BOOKSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BOOKSTORE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BOOKSTORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOOKSTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOOKSTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOOKSTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOOKSTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOOKSTORE_ARGON_KEY_LEN" default:"32"`
}

// CartConfig tunes the session-bound shopping cart.
type CartConfig struct {
	SessionTTL time.Duration `envconfig:"BOOKSTORE_CART_SESSION_TTL" default:"168h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BOOKSTORE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOOKSTORE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
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
