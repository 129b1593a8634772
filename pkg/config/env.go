package config

const (
	EnvPrefix = "BUY2BRANDS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EventsBrokerNone   = "none"
	EventsBrokerPubSub = "pubsub"
	EventsBrokerKafka  = "kafka"
)

const (
	EnvAppEnv       = "BUY2BRANDS_APP_ENV"
	EnvPort         = "BUY2BRANDS_APP_PORT"
	EnvDBDSN        = "BUY2BRANDS_DB_DSN"
	EnvDBHost       = "BUY2BRANDS_DB_HOST"
	EnvDBUser       = "BUY2BRANDS_DB_USER"
	EnvDBName       = "BUY2BRANDS_DB_NAME"
	EnvRedisURL     = "BUY2BRANDS_REDIS_URL"
	EnvJWTSecret    = "BUY2BRANDS_JWT_SECRET"
	EnvJWTIssuer    = "BUY2BRANDS_JWT_ISSUER"
	EnvJWTExpMins   = "BUY2BRANDS_JWT_EXPIRATION_MINUTES"
	EnvStripeSecret = "BUY2BRANDS_STRIPE_WEBHOOK_SECRET"
	EnvEventsBroker = "BUY2BRANDS_EVENTS_BROKER"
	EnvGCPProjectID = "BUY2BRANDS_GCP_PROJECT_ID"
	EnvKafkaBrokers = "BUY2BRANDS_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
