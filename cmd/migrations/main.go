package main

import (
	"context"
	"time"

	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	mongoMigration "voicebooking/internal/migrations/mongo"
	"voicebooking/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if cfg.UsesMemoryStore() {
		cfg.Log.Fatal("Migrations need the mongo store driver", "store_driver", cfg.StoreDriver)
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job")
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	if cfg.SeedDemoData {
		seedDemoData(ctx, cfg)
	}
	cfg.Log.Info("Migration completed successfully")
}

func seedDemoData(ctx context.Context, cfg *config.Config) {
	store := service.NewBookingStore(
		repository.NewMongoCallerRepository(cfg),
		repository.NewMongoAppointmentRepository(cfg),
		repository.NewMongoConversationRepository(cfg),
		validator.New(cfg.Log),
		cfg,
	)
	if _, err := mongoMigration.SeedDemoData(ctx, store, time.Now(), cfg.Log); err != nil {
		cfg.Log.Fatal("Demo seed failed", "error", err)
	}
}
