package bootstrap

import (
	"log"

	"docsearch-be/internal/config"
	"docsearch-be/internal/controller"
	"docsearch-be/internal/pkg/logger"
	"docsearch-be/internal/repository/contract"
	"docsearch-be/internal/repository/implementation"
	"docsearch-be/internal/repository/unitofwork"
	"docsearch-be/internal/service"
	"docsearch-be/pkg/embedding"
	"docsearch-be/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	SearchController   controller.ISearchController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

// NewContainer wires the whole dependency graph. db may be nil, in which
// case the in-memory chunk store backs the service (development, tests).
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	var chunkRepo contract.ChunkRepository
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db, cfg.Retrieval.EmbeddingDimension)
		chunkRepo = implementation.NewChunkRepository(db, cfg.Retrieval.EmbeddingDimension)
	} else {
		memFactory := unitofwork.NewMemoryFactory(cfg.Retrieval.EmbeddingDimension)
		uowFactory = memFactory
		chunkRepo = memFactory.Repository()
		log.Println("[WARN] No database configured, using in-memory chunk store")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding chain. The primary provider is built lazily; the hash
	// fallback inside the generator keeps ingestion alive when it is down.
	generator := embedding.NewGenerator(cfg.Retrieval.EmbeddingDimension, func() embedding.EmbeddingProvider {
		if cfg.Ai.EmbeddingProvider == "ollama" {
			log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
			return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		}
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey)
	})

	// 4. Services
	tracker := service.NewJobTracker()
	publisher := service.NewPublisherService(pubSub, cfg.Ai.IngestTopic)
	ingestionService := service.NewIngestionService(uowFactory, generator, publisher, tracker, cfg.Retrieval, sysLogger)
	consumerService := service.NewConsumerService(pubSub, cfg.Ai.IngestTopic, ingestionService, sysLogger)

	retriever := search.NewRetriever(generator, chunkRepo, sysLogger)
	searchService := service.NewSearchService(retriever, cfg.Retrieval, sysLogger)

	// 5. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(ingestionService),
		SearchController:   controller.NewSearchController(searchService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}
