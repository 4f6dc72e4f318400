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
	Ordering      OrderingConfig
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
	Env          string   `envconfig:"QUICKPLATE_APP_ENV" required:"true"`
	Port         string   `envconfig:"QUICKPLATE_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"QUICKPLATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"QUICKPLATE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"QUICKPLATE_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUICKPLATE_DB_DSN"`
	Driver string `envconfig:"QUICKPLATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUICKPLATE_DB_HOST"`
	LegacyPort     int    `envconfig:"QUICKPLATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUICKPLATE_DB_USER"`
	LegacyPassword string `envconfig:"QUICKPLATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUICKPLATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUICKPLATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUICKPLATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUICKPLATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUICKPLATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUICKPLATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUICKPLATE_REDIS_URL"`
	Address      string        `envconfig:"QUICKPLATE_REDIS_ADDR"`
	Password     string        `envconfig:"QUICKPLATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUICKPLATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUICKPLATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUICKPLATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUICKPLATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKPLATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKPLATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"QUICKPLATE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"QUICKPLATE_JWT_ISSUER" default:"quickplate"`
	ExpirationMinutes      int    `envconfig:"QUICKPLATE_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"QUICKPLATE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QUICKPLATE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QUICKPLATE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QUICKPLATE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QUICKPLATE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QUICKPLATE_ARGON_KEY_LEN" default:"32"`
}

// CartConfig controls the session-keyed cart store.
type CartConfig struct {
	TTL time.Duration `envconfig:"QUICKPLATE_CART_TTL" default:"24h"`
}

// OrderingConfig carries the checkout policy knobs.
type OrderingConfig struct {
	OrderNumberPrefix  string `envconfig:"QUICKPLATE_ORDER_NUMBER_PREFIX" default:"QP"`
	DeliveryFeeCents   int    `envconfig:"QUICKPLATE_DELIVERY_FEE_CENTS" default:"299"`
	PickupPrepMinMins  int    `envconfig:"QUICKPLATE_PICKUP_PREP_MIN_MINUTES" default:"15"`
	PickupPrepMaxMins  int    `envconfig:"QUICKPLATE_PICKUP_PREP_MAX_MINUTES" default:"30"`
	DeliverPrepMinMins int    `envconfig:"QUICKPLATE_DELIVERY_PREP_MIN_MINUTES" default:"20"`
	DeliverPrepMaxMins int    `envconfig:"QUICKPLATE_DELIVERY_PREP_MAX_MINUTES" default:"40"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"QUICKPLATE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUICKPLATE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUICKPLATE_AUTO_MIGRATE" default:"false"`
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
