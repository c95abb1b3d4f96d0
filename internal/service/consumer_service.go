package service

import (
	"context"
	"encoding/json"
	"time"

	"family-stories-be/internal/constant"
	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"
	"family-stories-be/pkg/events"
	pktNats "family-stories-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService turns follow-up interactions into queued user prompts.
// Conversion runs off the request path: a failed conversion never fails the
// interaction that triggered it.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
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
	var payload dto.ConvertFollowUpMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal follow-up message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages would never succeed, drop them
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	interaction, err := uow.InteractionRepository().FindOne(ctx, specification.ByID{ID: payload.InteractionId})
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load interaction", map[string]interface{}{
			"interaction_id": payload.InteractionId,
			"error":          err.Error(),
		})
		msg.Nack()
		return
	}
	if interaction == nil {
		cs.logger.Warn("ConsumerService", "Interaction vanished before conversion", map[string]interface{}{"interaction_id": payload.InteractionId})
		msg.Ack()
		return
	}
	if interaction.Kind != entity.InteractionKindFollowUp {
		msg.Ack()
		return
	}

	prompt := entity.UserPrompt{
		Id:            uuid.New(),
		ProjectId:     payload.ProjectId,
		Text:          payload.Content,
		Priority:      constant.FollowUpPromptPriority,
		CreatedBy:     payload.AuthorId,
		ParentStoryId: &payload.StoryId,
		IsDelivered:   false,
		CreatedAt:     time.Now(),
	}
	if err := uow.UserPromptRepository().Create(ctx, &prompt); err != nil {
		cs.logger.Error("ConsumerService", "Failed to queue follow-up prompt", map[string]interface{}{
			"interaction_id": payload.InteractionId,
			"error":          err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewFollowUpQueued(payload.ProjectId, prompt.Id, payload.StoryId)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to publish FOLLOW_UP_QUEUED event", map[string]interface{}{"error": err.Error()})
		}
	}

	cs.logger.Info("ConsumerService", "Follow-up converted to queued prompt", map[string]interface{}{
		"interaction_id": payload.InteractionId,
		"user_prompt_id": prompt.Id,
	})
	msg.Ack()
}
