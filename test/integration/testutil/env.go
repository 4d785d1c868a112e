package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	mongoMigration "carematch/internal/migrations/mongo"
	"carematch/pkg/logger"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv skips the calling test unless TEST_SERVER_URL points at a running service.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL is not set; skipping integration test")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

// Setup migrates and seeds the test database, clears appointment state, and waits for the service.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultHealthCheckTimeout)
	defer cancel()
	if err := mongoMigration.RunMigration(ctx, mongo.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := mongoMigration.Seed(ctx, mongo.Database, logger.Discard()); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	mongo.CleanAppointments(t)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanAppointments(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)

// Path joins the appointments API prefix with the given segments.
func Path(format string, args ...any) string {
	return "/api/v1" + fmt.Sprintf(format, args...)
}
