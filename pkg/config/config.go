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
	Stripe        StripeConfig
	Checkout      CheckoutConfig
	Sendgrid      SendgridConfig
	Realtime      RealtimeConfig
	Events        EventsConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Events.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BUY2BRANDS_APP_ENV" required:"true"`
	Port         string `envconfig:"BUY2BRANDS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BUY2BRANDS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUY2BRANDS_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"BUY2BRANDS_FRONTEND_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BUY2BRANDS_DB_DSN"`

	LegacyHost     string `envconfig:"BUY2BRANDS_DB_HOST"`
	LegacyPort     int    `envconfig:"BUY2BRANDS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BUY2BRANDS_DB_USER"`
	LegacyPassword string `envconfig:"BUY2BRANDS_DB_PASSWORD"`
	LegacyName     string `envconfig:"BUY2BRANDS_DB_NAME"`
	LegacySSLMode  string `envconfig:"BUY2BRANDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUY2BRANDS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BUY2BRANDS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BUY2BRANDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUY2BRANDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"BUY2BRANDS_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BUY2BRANDS_REDIS_URL" required:"true"`
	Password     string        `envconfig:"BUY2BRANDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"BUY2BRANDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BUY2BRANDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BUY2BRANDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BUY2BRANDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BUY2BRANDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BUY2BRANDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BUY2BRANDS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BUY2BRANDS_JWT_ISSUER" required:"true"`
	Audience               string `envconfig:"BUY2BRANDS_JWT_AUDIENCE" default:"wholesale-api"`
	ExpirationMinutes      int    `envconfig:"BUY2BRANDS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BUY2BRANDS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BUY2BRANDS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BUY2BRANDS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BUY2BRANDS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BUY2BRANDS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BUY2BRANDS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BUY2BRANDS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUY2BRANDS_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"BUY2BRANDS_STRIPE_API_KEY"`
	Secret   string `envconfig:"BUY2BRANDS_STRIPE_WEBHOOK_SECRET"`
	Env      string `envconfig:"BUY2BRANDS_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"BUY2BRANDS_STRIPE_CURRENCY" default:"gbp"`
	// WebhookMaxBytes caps callback bodies; larger deliveries get 413.
	WebhookMaxBytes int64 `envconfig:"BUY2BRANDS_STRIPE_WEBHOOK_MAX_BYTES" default:"524288"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessPath string `envconfig:"BUY2BRANDS_CHECKOUT_SUCCESS_PATH" default:"/payment-success?session_id={CHECKOUT_SESSION_ID}"`
	CancelPath  string `envconfig:"BUY2BRANDS_CHECKOUT_CANCEL_PATH" default:"/payment-cancel"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"BUY2BRANDS_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"BUY2BRANDS_SENDGRID_FROM_EMAIL" default:"sales@buy2brands.com"`
	FromName    string `envconfig:"BUY2BRANDS_SENDGRID_FROM_NAME" default:"Buy2Brands"`
	AdminEmail  string `envconfig:"BUY2BRANDS_ADMIN_EMAIL" default:"sales@buy2brands.com"`
}

type RealtimeConfig struct {
	AdminChannel string `envconfig:"BUY2BRANDS_REALTIME_ADMIN_CHANNEL" default:"admin_room"`
	UserPrefix   string `envconfig:"BUY2BRANDS_REALTIME_USER_PREFIX" default:"user_"`
}

type EventsConfig struct {
	Broker       string   `envconfig:"BUY2BRANDS_EVENTS_BROKER" default:"none"`
	GCPProjectID string   `envconfig:"BUY2BRANDS_GCP_PROJECT_ID"`
	OrdersTopic  string   `envconfig:"BUY2BRANDS_EVENTS_ORDERS_TOPIC" default:"order-events"`
	ReturnsTopic string   `envconfig:"BUY2BRANDS_EVENTS_RETURNS_TOPIC"`
	KafkaBrokers []string `envconfig:"BUY2BRANDS_KAFKA_BROKERS"`
}

func (e EventsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(e.Broker)) {
	case "", EventsBrokerNone:
		return nil
	case EventsBrokerPubSub:
		if strings.TrimSpace(e.GCPProjectID) == "" {
			return fmt.Errorf("%s is required when the pubsub broker is selected", EnvGCPProjectID)
		}
		return nil
	case EventsBrokerKafka:
		if len(e.KafkaBrokers) == 0 {
			return fmt.Errorf("%s is required when the kafka broker is selected", EnvKafkaBrokers)
		}
		return nil
	default:
		return fmt.Errorf("unsupported events broker %q", e.Broker)
	}
}

// BrokerName returns the normalized broker selection.
func (e EventsConfig) BrokerName() string {
	b := strings.ToLower(strings.TrimSpace(e.Broker))
	if b == "" {
		return EventsBrokerNone
	}
	return b
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BUY2BRANDS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BUY2BRANDS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BUY2BRANDS_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
