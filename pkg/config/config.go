package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "CAKESHOP_DB_DSN"
	EnvDBHost = "CAKESHOP_DB_HOST"
	EnvDBUser = "CAKESHOP_DB_USER"
	EnvDBName = "CAKESHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	GCP           GCPConfig
	Storage       StorageConfig
	Media         MediaConfig
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
	Env          string `envconfig:"CAKESHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"CAKESHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CAKESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAKESHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAKESHOP_DB_DSN"`
	Driver string `envconfig:"CAKESHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAKESHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"CAKESHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAKESHOP_DB_USER"`
	LegacyPassword string `envconfig:"CAKESHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAKESHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAKESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAKESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAKESHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAKESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAKESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAKESHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAKESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"CAKESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAKESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAKESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAKESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAKESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAKESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAKESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CAKESHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CAKESHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CAKESHOP_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"CAKESHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int           `envconfig:"CAKESHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int           `envconfig:"CAKESHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int           `envconfig:"CAKESHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"CAKESHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"CAKESHOP_ARGON_KEY_LEN" default:"32"`
	ResetTokenTTL    time.Duration `envconfig:"CAKESHOP_PASSWORD_RESET_TTL" default:"30m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CAKESHOP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAKESHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAKESHOP_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	DraftTTL      time.Duration `envconfig:"CAKESHOP_CHECKOUT_DRAFT_TTL" default:"168h"`
	OrderRefChars int           `envconfig:"CAKESHOP_CHECKOUT_ORDER_REF_CHARS" default:"8"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CAKESHOP_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CAKESHOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CAKESHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	ProductBucket string `envconfig:"CAKESHOP_STORAGE_PRODUCT_BUCKET" required:"true"`
	GalleryBucket string `envconfig:"CAKESHOP_STORAGE_GALLERY_BUCKET" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"CAKESHOP_MAX_UPLOAD_MB" default:"20"`
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
