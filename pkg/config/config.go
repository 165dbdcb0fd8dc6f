package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fleetbook/pkg/client"
	"fleetbook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	JWTSecret string

	PaymentProvider  string
	PaymentBaseURL   string
	PaymentKeyID     string
	PaymentKeySecret string
	PaymentTimeout   time.Duration
	RefundTimeout    time.Duration
	Currency         string

	MapsBaseURL string
	MapsAPIKey  string
	MapsTimeout time.Duration

	KafkaBrokers            []string
	KafkaNotificationsTopic string
	KafkaConsumerGroup      string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	OpsEmail     string

	RefundWindow      time.Duration
	BookingCodePrefix string
	SlotLockTTL       time.Duration
	TxMaxAttempts     int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),

		PaymentProvider:  getEnvStr(EnvPaymentProvider, DefaultPaymentProvider),
		PaymentBaseURL:   getEnvStr(EnvPaymentBaseURL, DefaultPaymentBaseURL),
		PaymentKeyID:     getEnvStr(EnvPaymentKeyID, ""),
		PaymentKeySecret: getEnvStr(EnvPaymentKeySecret, ""),
		PaymentTimeout:   getEnvDuration(EnvPaymentTimeout, DefaultPaymentTimeout),
		RefundTimeout:    getEnvDuration(EnvRefundTimeout, DefaultRefundTimeout),
		Currency:         getEnvStr(EnvCurrency, DefaultCurrency),

		MapsBaseURL: getEnvStr(EnvMapsBaseURL, DefaultMapsBaseURL),
		MapsAPIKey:  getEnvStr(EnvMapsAPIKey, ""),
		MapsTimeout: getEnvDuration(EnvMapsTimeout, DefaultMapsTimeout),

		KafkaBrokers:            splitCSV(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		KafkaNotificationsTopic: getEnvStr(EnvKafkaNotificationsTopic, DefaultKafkaNotificationsTopic),
		KafkaConsumerGroup:      getEnvStr(EnvKafkaConsumerGroup, DefaultKafkaConsumerGroup),

		SMTPHost:     getEnvStr(EnvSMTPHost, DefaultSMTPHost),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPFrom:     getEnvStr(EnvSMTPFrom, DefaultSMTPFrom),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		OpsEmail:     getEnvStr(EnvOpsEmail, ""),

		RefundWindow:      getEnvDuration(EnvRefundWindow, DefaultRefundWindow),
		BookingCodePrefix: getEnvStr(EnvBookingCodePrefix, DefaultBookingCodePrefix),
		SlotLockTTL:       getEnvDuration(EnvSlotLockTTL, DefaultSlotLockTTL),
		TxMaxAttempts:     getEnvNum(EnvTxMaxAttempts, DefaultTxMaxAttempts),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.FormatJSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, DefaultRedisConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, "MongoURI must start with 'mongodb://' or 'mongodb+srv://'")
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RedisAddr == "" {
		errs = append(errs, "RedisAddr cannot be empty")
	}

	if cfg.PaymentProvider != "razorpay" && cfg.PaymentProvider != "stripe" {
		errs = append(errs, fmt.Sprintf("PaymentProvider must be one of razorpay, stripe, got: %s", cfg.PaymentProvider))
	}
	if cfg.PaymentTimeout <= 0 || cfg.PaymentTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("PaymentTimeout must be within (0s, 1m], got: %s", cfg.PaymentTimeout))
	}
	if cfg.RefundTimeout <= 0 || cfg.RefundTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("RefundTimeout must be within (0s, 1m], got: %s", cfg.RefundTimeout))
	}
	if len(cfg.Currency) != 3 {
		errs = append(errs, fmt.Sprintf("Currency must be a 3-letter ISO 4217 code, got: %s", cfg.Currency))
	}

	if len(cfg.KafkaBrokers) == 0 {
		errs = append(errs, "KafkaBrokers cannot be empty")
	}
	if cfg.KafkaNotificationsTopic == "" {
		errs = append(errs, "KafkaNotificationsTopic cannot be empty")
	}

	if cfg.RefundWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RefundWindow must be positive, got: %s", cfg.RefundWindow))
	}
	if cfg.BookingCodePrefix == "" {
		errs = append(errs, "BookingCodePrefix cannot be empty")
	}
	if cfg.SlotLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("SlotLockTTL must be positive, got: %s", cfg.SlotLockTTL))
	}
	if cfg.TxMaxAttempts < 1 || cfg.TxMaxAttempts > 10 {
		errs = append(errs, fmt.Sprintf("TxMaxAttempts must be between 1 and 10, got: %d", cfg.TxMaxAttempts))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errs = append(errs, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if len(errs) > 0 {
		msg := "Configuration validation failed:\n"
		for i, e := range errs {
			msg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", msg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"port", cfg.Port,
		"jwt_secret_set", cfg.JWTSecret != "",
		"payment_provider", cfg.PaymentProvider,
		"payment_key_set", cfg.PaymentKeyID != "",
		"payment_timeout", cfg.PaymentTimeout,
		"refund_timeout", cfg.RefundTimeout,
		"currency", cfg.Currency,
		"maps_base_url", cfg.MapsBaseURL,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"notifications_topic", cfg.KafkaNotificationsTopic,
		"refund_window", cfg.RefundWindow,
		"booking_code_prefix", cfg.BookingCodePrefix,
		"slot_lock_ttl", cfg.SlotLockTTL,
		"tx_max_attempts", cfg.TxMaxAttempts,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
