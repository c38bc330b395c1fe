package main

import (
	"log"

	"docsearch-be/internal/config"
	"docsearch-be/pkg/database"
)

func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" {
		log.Fatal("DB_CONNECTION_STRING is required for migration")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	if err := database.Migrate(db, cfg.Retrieval.EmbeddingDimension); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Migration complete (vector dimension %d)", cfg.Retrieval.EmbeddingDimension)
}
