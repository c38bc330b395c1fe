package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate prepares the chunk store: the pgvector extension, the table and
// the indexes the similarity search relies on. The vector column dimension
// is fixed here; changing it requires re-embedding every chunk.
func Migrate(db *gorm.DB, dimension int) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS document_chunks (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	document_id VARCHAR(255) NOT NULL,
	text TEXT NOT NULL,
	source_type VARCHAR(32) NOT NULL,
	source_link TEXT,
	page_number INTEGER,
	section_title TEXT,
	embedding vector(%d) NOT NULL,
	chunk_index INTEGER NOT NULL,
	chunk_size INTEGER NOT NULL,
	metadata JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, dimension)
	if err := db.Exec(createTable).Error; err != nil {
		return fmt.Errorf("create document_chunks: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_owner ON document_chunks (owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_owner_document ON document_chunks (owner_id, document_id)",
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding ON document_chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)",
	}
	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
