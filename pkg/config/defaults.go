package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carematch"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL = 30 * time.Second

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "appointments.lifecycle"
	DefaultEventsDLQTopic = "appointments.lifecycle.dlq"
	DefaultEventsGroupID  = "appointment-events"

	DefaultOtelEnabled      = false
	DefaultOtelEndpoint     = "localhost:4317"
	DefaultOtelSamplingRate = 1.0

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100
)
