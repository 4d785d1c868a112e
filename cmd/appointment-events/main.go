package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"carematch/internal/appointments/events"
	"carematch/internal/appointments/repository"
	"carematch/pkg/config"
	"carematch/pkg/kafka"
	kafka_config "carematch/pkg/kafka/config"
	kafka_middleware "carematch/pkg/kafka/middleware"
)

const ServiceName = "appointment-events"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	auditHandler := events.NewAuditHandler(repository.NewAuditRepository(cfg), cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.EventsTopic, cfg.EventsGroupID, cfg.EventsDLQTopic, auditHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	counters := kafka_middleware.NewCounters()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(counters.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting appointment event auditor", "topic", cfg.EventsTopic, "group_id", cfg.EventsGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	counters.Log(cfg.Log)
	cfg.Log.Info("Appointment event auditor stopped")
}
