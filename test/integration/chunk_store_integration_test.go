package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"docsearch-be/internal/entity"
	"docsearch-be/internal/repository/unitofwork"
	"docsearch-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationDimension = 768

func unitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis%dim] = 1
	return v
}

func TestChunkStoreIntegration(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, database.Migrate(gormDB, integrationDimension))

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	uowFactory := unitofwork.NewRepositoryFactory(gormDB, integrationDimension)
	ctx := context.Background()
	owner := uuid.New()
	documentId := "integration-" + uuid.New().String()

	t.Cleanup(func() {
		uow := uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err == nil {
			_ = uow.ChunkRepository().DeleteAllByOwnerId(ctx, owner)
			_ = uow.Commit()
		}
	})

	t.Run("Upsert And Read Back", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		page := 1
		chunks := []*entity.Chunk{
			{
				Id:           entity.NewChunkId(owner, documentId, page, 0),
				OwnerId:      owner,
				DocumentId:   documentId,
				Text:         "integration chunk one",
				SourceType:   entity.SourceTypeUploadedFile,
				PageNumber:   &page,
				SectionTitle: "Setup",
				Embedding:    unitVector(integrationDimension, 0),
				ChunkIndex:   0,
				ChunkSize:    21,
			},
			{
				Id:         entity.NewChunkId(owner, documentId, page, 1),
				OwnerId:    owner,
				DocumentId: documentId,
				Text:       "integration chunk two",
				SourceType: entity.SourceTypeUploadedFile,
				PageNumber: &page,
				Embedding:  unitVector(integrationDimension, 1),
				ChunkIndex: 1,
				ChunkSize:  21,
				Degraded:   true,
			},
		}
		require.NoError(t, uow.ChunkRepository().UpsertBulk(ctx, owner, chunks))
		require.NoError(t, uow.Commit())

		repo := uowFactory.NewUnitOfWork(ctx).ChunkRepository()
		found, err := repo.FindByDocumentId(ctx, owner, documentId)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Setup", found[0].SectionTitle)
		assert.True(t, found[1].Degraded, "degraded flag must round-trip through metadata")
	})

	t.Run("Search Similar Ranks By Cosine", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).ChunkRepository()
		scored, err := repo.SearchSimilar(ctx, owner, unitVector(integrationDimension, 0), 10, 0.0, "")
		require.NoError(t, err)
		require.NotEmpty(t, scored)
		assert.Equal(t, 0, scored[0].Chunk.ChunkIndex)
		assert.InDelta(t, 1.0, scored[0].Similarity, 0.001)
	})

	t.Run("Upsert Is Idempotent", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		page := 1
		replay := &entity.Chunk{
			Id:         entity.NewChunkId(owner, documentId, page, 0),
			OwnerId:    owner,
			DocumentId: documentId,
			Text:       "integration chunk one revised",
			SourceType: entity.SourceTypeUploadedFile,
			PageNumber: &page,
			Embedding:  unitVector(integrationDimension, 0),
			ChunkIndex: 0,
			ChunkSize:  29,
		}
		require.NoError(t, uow.ChunkRepository().UpsertBulk(ctx, owner, []*entity.Chunk{replay}))
		require.NoError(t, uow.Commit())

		repo := uowFactory.NewUnitOfWork(ctx).ChunkRepository()
		found, err := repo.FindByDocumentId(ctx, owner, documentId)
		require.NoError(t, err)
		assert.Len(t, found, 2, "re-upsert must not create a new row")
		assert.Equal(t, "integration chunk one revised", found[0].Text)
	})

	t.Run("Owner Scoping", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).ChunkRepository()
		stranger := uuid.New()
		found, err := repo.FindByDocumentId(ctx, stranger, documentId)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}
