package main

import (
	"context"
	"log"

	"docsearch-be/internal/bootstrap"
	"docsearch-be/internal/config"
	"docsearch-be/internal/server"
	"docsearch-be/internal/tracer"
	"docsearch-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database. A missing connection string falls back to the
	// in-memory store so the service still runs for local development.
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services. The subscription must exist before the
	// server accepts requests: the in-process channel bus drops messages
	// published to a topic nobody subscribes to, which would strand a job
	// submitted during startup as pending forever.
	log.Println("Starting Consumer Service...")
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Panicf("Unable to start consumer: %v", err)
	}

	// 5. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
