package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	mongoMigration "carematch/internal/migrations/mongo"
	"carematch/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seed := flag.Bool("seed", false, "upsert the demo caregivers and members after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	cfg.Log.Info("Starting Mongo migration job", "seed", *seed)
	defer cfg.GracefulShutdown()

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if *seed {
		if err := mongoMigration.Seed(ctx, db, cfg.Log); err != nil {
			cfg.Log.Fatal("Seeding failed", "error", err)
		}
	}
	fmt.Println("Migration completed successfully.")
}
