package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "fleetbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr        = "localhost:6379"
	DefaultRedisDB          = 0
	DefaultRedisConnTimeout = 5 * time.Second

	DefaultPort = "8080"

	DefaultPaymentProvider = "razorpay"
	DefaultPaymentBaseURL  = "https://api.razorpay.com/v1"
	DefaultPaymentTimeout  = 15 * time.Second
	DefaultRefundTimeout   = 15 * time.Second
	DefaultCurrency        = "INR"

	DefaultMapsBaseURL = "https://maps.googleapis.com/maps/api"
	DefaultMapsTimeout = 10 * time.Second

	DefaultKafkaBrokers            = "localhost:9092"
	DefaultKafkaNotificationsTopic = "booking-notifications"
	DefaultKafkaConsumerGroup      = "notifications-worker"

	DefaultSMTPHost = "localhost"
	DefaultSMTPPort = 587
	DefaultSMTPFrom = "bookings@fleetbook.local"

	DefaultRefundWindow      = 24 * time.Hour
	DefaultBookingCodePrefix = "FLB"
	DefaultSlotLockTTL       = 10 * time.Second
	DefaultTxMaxAttempts     = 3

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLogLevel = "info"

	DefaultPaginationLimit = 100
)
