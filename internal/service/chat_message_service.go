package service

import (
	"context"
	"strings"
	"time"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/pkg/cache"
	"tourism-chat-be/pkg/events"

	"github.com/google/uuid"
)

const derivedTitleMaxRunes = 50

type IChatMessageService interface {
	AddMessage(ctx context.Context, userId uuid.UUID, sessionId string, msg *dto.MessageDTO) (*dto.ChatSessionResponse, error)
	AddBatch(ctx context.Context, sessionId string, msgs []dto.MessageDTO) (*dto.ChatSessionResponse, error)
	AddBatchForAI(ctx context.Context, sessionId string, msgs []dto.AIMessageDTO) (*dto.ChatSessionResponse, error)
}

type chatMessageService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	shareCache       cache.ISharedSessionCache
	log              logger.ILogger
}

func NewChatMessageService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	shareCache cache.ISharedSessionCache,
	log logger.ILogger,
) IChatMessageService {
	return &chatMessageService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		shareCache:       shareCache,
		log:              log,
	}
}

func toChatMessage(msg *dto.MessageDTO) (entity.ChatMessage, error) {
	sender := entity.MessageSender(msg.Sender)
	if !sender.Valid() {
		return entity.ChatMessage{}, apperr.InvalidInput("sender must be 'user' or 'ai'")
	}

	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return entity.ChatMessage{
		Id:        msg.Id,
		Content:   msg.Content,
		Sender:    sender,
		Timestamp: timestamp,
	}, nil
}

// deriveTitle promotes the first user message into the session title when
// the session still carries the placeholder title.
func deriveTitle(session *entity.ChatSession, msg entity.ChatMessage) {
	if session.Title != entity.DefaultSessionTitle {
		return
	}
	if msg.Sender != entity.MessageSenderUser {
		return
	}
	if len(session.Messages) > 2 {
		return
	}

	title := strings.TrimSpace(msg.Content)
	runes := []rune(title)
	if len(runes) > derivedTitleMaxRunes {
		title = string(runes[:derivedTitleMaxRunes]) + "..."
	}
	if title != "" {
		session.Title = title
	}
}

func (c *chatMessageService) AddMessage(ctx context.Context, userId uuid.UUID, sessionId string, msg *dto.MessageDTO) (*dto.ChatSessionResponse, error) {
	message, err := toChatMessage(msg)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindBySessionIdAndOwner(ctx, sessionId, userId)
	if err != nil {
		return nil, corruptionOr(err)
	}
	if session == nil {
		return nil, apperr.NotFound("Chat session not found")
	}

	session.Messages = append(session.Messages, message)
	session.LastActivity = time.Now()
	deriveTitle(session, message)

	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	c.afterAppend(ctx, session, &userId, 1)

	return sessionToResponse(session, true), nil
}

// AddBatch appends every message or none. Validation happens up front so a
// bad entry cannot leave a half-written batch behind.
func (c *chatMessageService) AddBatch(ctx context.Context, sessionId string, msgs []dto.MessageDTO) (*dto.ChatSessionResponse, error) {
	if len(msgs) == 0 {
		return nil, apperr.InvalidInput("messages must not be empty")
	}

	converted := make([]entity.ChatMessage, 0, len(msgs))
	for i := range msgs {
		message, err := toChatMessage(&msgs[i])
		if err != nil {
			return nil, err
		}
		converted = append(converted, message)
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, corruptionOr(err)
	}
	if session == nil {
		return nil, apperr.NotFound("Chat session not found")
	}

	session.Messages = append(session.Messages, converted...)
	session.LastActivity = time.Now()

	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	c.afterAppend(ctx, session, nil, len(converted))

	return sessionToResponse(session, true), nil
}

func (c *chatMessageService) AddBatchForAI(ctx context.Context, sessionId string, msgs []dto.AIMessageDTO) (*dto.ChatSessionResponse, error) {
	normalized := make([]dto.MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		normalized = append(normalized, dto.MessageDTO{
			Id:        m.Id,
			Content:   m.Content,
			Sender:    m.Sender,
			Timestamp: m.Timestamp.Time,
		})
	}
	return c.AddBatch(ctx, sessionId, normalized)
}

func (c *chatMessageService) afterAppend(ctx context.Context, session *entity.ChatSession, userId *uuid.UUID, count int) {
	if session.IsShared && session.ShareId != nil {
		c.shareCache.Invalidate(ctx, *session.ShareId)
	}

	if c.publisherService == nil {
		return
	}
	evt := events.NewSessionEvent(events.TypeMessagesAppended, session.SessionId, userId, map[string]interface{}{
		"appended": count,
	})
	if err := c.publisherService.Publish(ctx, evt); err != nil {
		c.log.Warn("ChatMessageService", "failed to publish activity event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
}
