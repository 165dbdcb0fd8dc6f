package main

import (
	"fleetbook/internal/vehicles/handler"
	"fleetbook/internal/vehicles/repository"
	"fleetbook/internal/vehicles/service"
	"fleetbook/internal/vehicles/validator"
	"fleetbook/pkg/app"
	"fleetbook/pkg/config"
)

const ServiceName = "vehicles"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Vehicles service")
	vehicleService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewVehicleHandler(vehicleService, cfg.Log), nil)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.VehicleService {
	vehicleValidator := validator.NewVehicleValidator(cfg.Log)
	vehicleRepo := repository.NewMongoVehicleRepository(cfg)
	vehicleService := service.NewVehicleService(
		vehicleRepo,
		vehicleValidator,
		cfg,
	)

	cfg.Log.Info("Vehicle service initialized", "database", cfg.MongoDatabaseName)
	return vehicleService
}
