package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fleetbook/internal/notifications"
	"fleetbook/pkg/config"
	"fleetbook/pkg/kafka"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	worker := notifications.NewWorker(notifications.NewSMTPSender(cfg), cfg)

	consumer, err := kafka.NewConsumer(
		cfg.KafkaBrokers,
		cfg.KafkaNotificationsTopic,
		cfg.KafkaConsumerGroup,
		worker.HandleMessage,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting Notifications worker",
		"topic", cfg.KafkaNotificationsTopic,
		"group", cfg.KafkaConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && err != context.Canceled {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifications worker stopped")
}
