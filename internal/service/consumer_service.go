package service

import (
	"context"
	"encoding/json"
	"errors"

	"docsearch-be/internal/apperr"
	"docsearch-be/internal/dto"
	"docsearch-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	// Consume subscribes to the ingestion topic and processes messages on a
	// background goroutine. The subscription is established before Consume
	// returns, so messages published afterwards are never lost.
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	ingestion IIngestionService
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestion IIngestionService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		ingestion: ingestion,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal ingestion message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("consumer", "processing ingestion job", map[string]interface{}{
		"job_id":      payload.JobId.String(),
		"document_id": payload.Request.DocumentId,
	})

	if err := cs.ingestion.ProcessJob(ctx, &payload); err != nil {
		// The tracker has already recorded the terminal state (failed or
		// cancelled, with the retryable flag); redelivery would find the job
		// gone from the active set, so the message is always acked and retry
		// is left to the client.
		if !errors.Is(err, apperr.ErrJobCancelled) {
			cs.logger.Error("consumer", "ingestion job failed", map[string]interface{}{
				"job_id": payload.JobId.String(),
				"error":  err.Error(),
			})
		}
	}

	msg.Ack()
}
