package main

import (
	bookingshandler "fleetbook/internal/bookings/handler"
	bookingsrepo "fleetbook/internal/bookings/repository"
	bookingsservice "fleetbook/internal/bookings/service"
	bookingsvalidator "fleetbook/internal/bookings/validator"
	quoteshandler "fleetbook/internal/quotes/handler"
	quotesservice "fleetbook/internal/quotes/service"
	vehiclesrepo "fleetbook/internal/vehicles/repository"
	"fleetbook/pkg/app"
	"fleetbook/pkg/config"
	"fleetbook/pkg/kafka"
	"fleetbook/pkg/maps"
	"fleetbook/pkg/notify"
	"fleetbook/pkg/payment"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")

	bookingService, quoteService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		quoteshandler.NewQuoteHandler(quoteService, cfg.Log),
		"/api/v1/quotes",
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (bookingsservice.BookingService, quotesservice.QuoteService) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaNotificationsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	gateway := payment.NewHTTPGateway(payment.Config{
		BaseURL:   cfg.PaymentBaseURL,
		KeyID:     cfg.PaymentKeyID,
		KeySecret: cfg.PaymentKeySecret,
		Timeout:   cfg.PaymentTimeout,
		Log:       cfg.Log,
	})

	distance := maps.NewHTTPProvider(maps.Config{
		BaseURL: cfg.MapsBaseURL,
		APIKey:  cfg.MapsAPIKey,
		Timeout: cfg.MapsTimeout,
		Log:     cfg.Log,
	})

	vehicleRepo := vehiclesrepo.NewMongoVehicleRepository(cfg)

	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoReservationRepository(cfg),
		bookingsrepo.NewBookingLockRepository(cfg),
		vehicleRepo,
		bookingsvalidator.NewReservationValidator(cfg.Log),
		gateway,
		notify.NewKafkaDispatcher(producer, ServiceName, cfg.Log),
		cfg,
	)

	quoteService := quotesservice.NewQuoteService(vehicleRepo, distance, cfg)

	cfg.Log.Info("Booking services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, quoteService
}
