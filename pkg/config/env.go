package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"

	EnvPaymentProvider  = "PAYMENT_PROVIDER"
	EnvPaymentBaseURL   = "PAYMENT_BASE_URL"
	EnvPaymentKeyID     = "PAYMENT_KEY_ID"
	EnvPaymentKeySecret = "PAYMENT_KEY_SECRET"
	EnvPaymentTimeout   = "PAYMENT_TIMEOUT"
	EnvRefundTimeout    = "REFUND_TIMEOUT"
	EnvCurrency         = "PAYMENT_CURRENCY"

	EnvMapsBaseURL = "MAPS_BASE_URL"
	EnvMapsAPIKey  = "MAPS_API_KEY"
	EnvMapsTimeout = "MAPS_TIMEOUT"

	EnvKafkaBrokers            = "KAFKA_BROKERS"
	EnvKafkaNotificationsTopic = "KAFKA_NOTIFICATIONS_TOPIC"
	EnvKafkaConsumerGroup      = "KAFKA_CONSUMER_GROUP"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPFrom     = "SMTP_FROM"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvOpsEmail     = "OPS_NOTIFICATION_EMAIL"

	EnvRefundWindow      = "REFUND_WINDOW"
	EnvBookingCodePrefix = "BOOKING_CODE_PREFIX"
	EnvSlotLockTTL       = "SLOT_LOCK_TTL"
	EnvTxMaxAttempts     = "TX_MAX_ATTEMPTS"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
