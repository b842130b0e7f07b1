package service

import (
	"context"
	"encoding/json"

	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains activity events into the activity_logs table so
// request handlers never block on audit writes.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		log:        log,
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
	var envelope activityEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.log.Error("ConsumerService", "failed to unmarshal activity event", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack malformed messages so they are not redelivered forever.
		msg.Ack()
		return
	}

	logEntry := &entity.ActivityLog{
		Id:        uuid.New(),
		EventType: envelope.EventType,
		Detail:    envelope.Payload,
		CreatedAt: envelope.OccurredAt,
	}
	if sessionId, ok := envelope.Payload["session_id"].(string); ok {
		logEntry.SessionId = sessionId
	}
	if rawUserId, ok := envelope.Payload["user_id"].(string); ok {
		if userId, err := uuid.Parse(rawUserId); err == nil {
			logEntry.UserId = &userId
		}
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ActivityLogRepository().Create(ctx, logEntry); err != nil {
		cs.log.Error("ConsumerService", "failed to persist activity log", map[string]interface{}{
			"event_type": envelope.EventType,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
