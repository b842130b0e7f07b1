package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/pkg/cache"
	"tourism-chat-be/pkg/events"

	"github.com/google/uuid"
)

type IChatShareService interface {
	Share(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.ShareChatSessionResponse, error)
	Unshare(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.ChatSessionResponse, error)
}

type chatShareService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	shareCache       cache.ISharedSessionCache
	clientURL        string
	log              logger.ILogger
}

func NewChatShareService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	shareCache cache.ISharedSessionCache,
	clientURL string,
	log logger.ILogger,
) IChatShareService {
	return &chatShareService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		shareCache:       shareCache,
		clientURL:        clientURL,
		log:              log,
	}
}

// generateShareToken returns 16 random bytes hex encoded. Tokens are
// unguessable and never derived from session or user identifiers.
func generateShareToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (c *chatShareService) Share(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.ShareChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindBySessionIdAndOwner(ctx, sessionId, userId)
	if err != nil {
		return nil, corruptionOr(err)
	}
	if session == nil {
		return nil, apperr.NotFound("Chat session not found")
	}

	if session.ShareId == nil {
		token, err := generateShareToken()
		if err != nil {
			return nil, apperr.Storage(err)
		}
		session.ShareId = &token
	}
	session.IsShared = true

	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewSessionEvent(events.TypeSessionShared, session.SessionId, &userId, nil))

	shareUrl := strings.TrimRight(c.clientURL, "/") + "/chat/shared/" + *session.ShareId

	return &dto.ShareChatSessionResponse{
		Session:  sessionToResponse(session, true),
		ShareUrl: shareUrl,
	}, nil
}

// Unshare revokes the link entirely: the token is cleared, so sharing
// again later mints a fresh one and old links stay dead.
func (c *chatShareService) Unshare(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindBySessionIdAndOwner(ctx, sessionId, userId)
	if err != nil {
		return nil, corruptionOr(err)
	}
	if session == nil {
		return nil, apperr.NotFound("Chat session not found")
	}

	previousShareId := session.ShareId
	session.IsShared = false
	session.ShareId = nil

	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	if previousShareId != nil {
		c.shareCache.Invalidate(ctx, *previousShareId)
	}

	c.publish(ctx, events.NewSessionEvent(events.TypeSessionUnshared, session.SessionId, &userId, nil))

	return sessionToResponse(session, true), nil
}

func (c *chatShareService) publish(ctx context.Context, evt events.Event) {
	if c.publisherService == nil {
		return
	}
	if err := c.publisherService.Publish(ctx, evt); err != nil {
		c.log.Warn("ChatShareService", "failed to publish activity event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
}
