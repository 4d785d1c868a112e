package main

import (
	"context"

	"carematch/internal/appointments/events"
	"carematch/internal/appointments/handler"
	"carematch/internal/appointments/repository"
	"carematch/internal/appointments/service"
	"carematch/internal/appointments/validator"
	dirhandler "carematch/internal/directory/handler"
	dirrepository "carematch/internal/directory/repository"
	dirservice "carematch/internal/directory/service"
	dirvalidator "carematch/internal/directory/validator"
	"carematch/pkg/app"
	"carematch/pkg/config"
	"carematch/pkg/kafka"
	kafka_config "carematch/pkg/kafka/config"
	kafka_middleware "carematch/pkg/kafka/middleware"
	"carematch/pkg/otel"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Appointments service")

	shutdownTracing, err := otel.Setup(context.Background(), cfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	publisher, closePublisher := initPublisher(cfg)
	directoryService := initDirectory(cfg)
	appointmentService := initServices(cfg, directoryService, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		handler.NewAppointmentHandler(appointmentService, cfg.Log),
		dirhandler.NewDirectoryHandler(directoryService, cfg.Log),
	)
	serverApp.OnShutdown(closePublisher)
	serverApp.OnShutdown(shutdownTracing)
	serverApp.Run()
}

func initDirectory(cfg *config.Config) dirservice.DirectoryService {
	directoryRepo := dirrepository.NewMongoDirectoryRepository(cfg)
	directoryValidator := dirvalidator.NewDirectoryValidator(cfg.Log)
	return dirservice.NewDirectoryService(directoryRepo, directoryValidator, cfg)
}

func initServices(cfg *config.Config, directory service.DirectoryLookup, publisher service.EventPublisher) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)
	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		lockRepo,
		directory,
		publisher,
		appointmentValidator,
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName, "events_enabled", cfg.EventsEnabled)
	return appointmentService
}

// initPublisher returns the lifecycle event sink and the hook that flushes it on shutdown.
func initPublisher(cfg *config.Config) (service.EventPublisher, func(context.Context) error) {
	if !cfg.EventsEnabled {
		return events.NoopPublisher{}, func(context.Context) error { return nil }
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	counters := kafka_middleware.NewCounters()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(counters.ProducerMiddleware())
	}

	closeFn := func(context.Context) error {
		counters.Log(cfg.Log)
		return producer.Close()
	}
	return events.NewKafkaPublisher(producer, cfg.Log), closeFn
}
