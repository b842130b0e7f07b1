package service

import (
	"context"
	"errors"
	"time"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/mapper"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/pkg/cache"
	"tourism-chat-be/pkg/events"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IChatSessionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error)
	// CreateForAI is idempotent: the bool reports whether a new session
	// was created (false means the existing one was returned).
	CreateForAI(ctx context.Context, req *dto.CreateChatSessionForAIRequest) (*dto.ChatSessionResponse, bool, error)
	Get(ctx context.Context, sessionId string, requester *uuid.UUID) (*dto.ChatSessionResponse, error)
	GetShared(ctx context.Context, shareId string) (*dto.ChatSessionResponse, error)
	List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ListChatSessionsResponse, error)
	Update(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.UpdateChatSessionRequest) (*dto.ChatSessionResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, sessionId string) error
}

type chatSessionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	shareCache       cache.ISharedSessionCache
	userCache        *gocache.Cache
	log              logger.ILogger
}

func NewChatSessionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	shareCache cache.ISharedSessionCache,
	userCache *gocache.Cache,
	log logger.ILogger,
) IChatSessionService {
	return &chatSessionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		shareCache:       shareCache,
		userCache:        userCache,
		log:              log,
	}
}

func newChatSession(sessionId string, userId uuid.UUID, title string) *entity.ChatSession {
	if title == "" {
		title = entity.DefaultSessionTitle
	}
	now := time.Now()
	return &entity.ChatSession{
		Id:           uuid.New(),
		SessionId:    sessionId,
		UserId:       userId,
		Title:        title,
		Messages:     make([]entity.ChatMessage, 0),
		LastActivity: now,
	}
}

func (c *chatSessionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatSessionRequest) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.ChatSessionRepository().FindBySessionId(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Chat session already exists")
	}

	session := newChatSession(req.SessionId, userId, req.Title)
	// The unique index still backstops concurrent creates.
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewSessionEvent(events.TypeSessionCreated, session.SessionId, &userId, nil))

	return sessionToResponse(session, true), nil
}

func (c *chatSessionService) CreateForAI(ctx context.Context, req *dto.CreateChatSessionForAIRequest) (*dto.ChatSessionResponse, bool, error) {
	userId, err := uuid.Parse(req.UserId)
	if err != nil {
		return nil, false, apperr.InvalidInput("userId must be a valid UUID")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := c.ensureUserExists(ctx, uow, userId); err != nil {
		return nil, false, err
	}

	existing, err := uow.ChatSessionRepository().FindBySessionId(ctx, req.SessionId)
	if err != nil && !errors.Is(err, mapper.ErrMalformedMessages) {
		return nil, false, err
	}
	if existing != nil {
		return sessionToResponse(existing, true), false, nil
	}

	session := newChatSession(req.SessionId, userId, req.Title)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, false, err
	}

	c.publish(ctx, events.NewSessionEvent(events.TypeSessionCreated, session.SessionId, &userId, map[string]interface{}{
		"origin": "ai_backend",
	}))

	return sessionToResponse(session, true), true, nil
}

// ensureUserExists guards AI-originated creates against dangling user ids.
// Positive lookups are cached briefly since the AI backend bursts creates.
func (c *chatSessionService) ensureUserExists(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	cacheKey := "user_exists:" + userId.String()
	if c.userCache != nil {
		if _, found := c.userCache.Get(cacheKey); found {
			return nil
		}
	}

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}

	if c.userCache != nil {
		c.userCache.Set(cacheKey, true, gocache.DefaultExpiration)
	}
	return nil
}

// Get resolves a session the way readers expect: the owner's own session
// first, then a shared session addressed by its share token.
func (c *chatSessionService) Get(ctx context.Context, sessionId string, requester *uuid.UUID) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	var session *entity.ChatSession
	var err error

	if requester != nil {
		session, err = repo.FindBySessionIdAndOwner(ctx, sessionId, *requester)
		if err != nil {
			return nil, corruptionOr(err)
		}
	}

	if session == nil {
		session, err = repo.FindByShareId(ctx, sessionId)
		if err != nil {
			return nil, corruptionOr(err)
		}
	}

	if session == nil {
		return nil, apperr.NotFound("Chat session not found")
	}
	if session.SessionId == "" {
		return nil, apperr.DataCorrupted("Chat session data is corrupted")
	}

	if requester != nil && session.IsOwnedBy(*requester) {
		return sessionToResponse(session, true), nil
	}
	if !session.IsShared {
		return nil, apperr.Forbidden("Access denied")
	}
	return sessionToResponse(session, false), nil
}

func (c *chatSessionService) GetShared(ctx context.Context, shareId string) (*dto.ChatSessionResponse, error) {
	if cached, found := c.shareCache.Get(ctx, shareId); found {
		return sessionToResponse(cached, false), nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindByShareId(ctx, shareId)
	if err != nil {
		return nil, corruptionOr(err)
	}
	if session == nil {
		return nil, apperr.NotFound("Shared chat session not found or no longer shared")
	}
	if session.SessionId == "" {
		return nil, apperr.DataCorrupted("Chat session data is corrupted")
	}

	c.shareCache.Set(ctx, session)

	return sessionToResponse(session, false), nil
}

func (c *chatSessionService) List(ctx context.Context, userId uuid.UUID, page, limit int) (*dto.ListChatSessionsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	sessions, err := repo.FindAllByOwner(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := repo.CountByOwner(ctx, userId)
	if err != nil {
		return nil, err
	}

	sessionIds := make([]string, 0, len(sessions))
	for _, s := range sessions {
		sessionIds = append(sessionIds, s.SessionId)
	}
	counts, err := repo.MessageCountsBySessionIds(ctx, sessionIds)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ChatSessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, dto.ChatSessionSummary{
			SessionId:    s.SessionId,
			Title:        s.Title,
			IsShared:     s.IsShared,
			ShareId:      s.ShareId,
			LastActivity: s.LastActivity,
			CreatedAt:    s.CreatedAt,
			Messages:     make([]dto.MessageDTO, 0),
			MessageCount: counts[s.SessionId],
		})
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return &dto.ListChatSessionsResponse{
		Sessions: summaries,
		Pagination: dto.PaginationDTO{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (c *chatSessionService) Update(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.UpdateChatSessionRequest) (*dto.ChatSessionResponse, error) {
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
	wasShared := session.IsShared

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.IsShared != nil {
		if *req.IsShared {
			session.IsShared = true
			if session.ShareId == nil {
				token, err := generateShareToken()
				if err != nil {
					return nil, apperr.Storage(err)
				}
				session.ShareId = &token
			}
		} else {
			session.IsShared = false
			session.ShareId = nil
		}
	}

	// Does not touch lastActivity; only message writes count as activity.
	if err := repo.Update(ctx, session); err != nil {
		return nil, err
	}

	if previousShareId != nil {
		c.shareCache.Invalidate(ctx, *previousShareId)
	}

	if req.IsShared != nil && *req.IsShared != wasShared {
		eventType := events.TypeSessionShared
		if !*req.IsShared {
			eventType = events.TypeSessionUnshared
		}
		c.publish(ctx, events.NewSessionEvent(eventType, session.SessionId, &userId, nil))
	}

	return sessionToResponse(session, true), nil
}

func (c *chatSessionService) Delete(ctx context.Context, userId uuid.UUID, sessionId string) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	session, err := repo.FindBySessionIdAndOwner(ctx, sessionId, userId)
	if err != nil && !errors.Is(err, mapper.ErrMalformedMessages) {
		return err
	}
	if session == nil && err == nil {
		return apperr.NotFound("Chat session not found")
	}

	deleted, err := repo.DeleteBySessionIdAndOwner(ctx, sessionId, userId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Chat session not found")
	}

	if session != nil && session.ShareId != nil {
		c.shareCache.Invalidate(ctx, *session.ShareId)
	}

	c.publish(ctx, events.NewSessionEvent(events.TypeSessionDeleted, sessionId, &userId, nil))

	return nil
}

func (c *chatSessionService) publish(ctx context.Context, evt events.Event) {
	if c.publisherService == nil {
		return
	}
	if err := c.publisherService.Publish(ctx, evt); err != nil {
		c.log.Warn("ChatSessionService", "failed to publish activity event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err.Error(),
		})
	}
}

// corruptionOr translates a malformed-messages decode failure into the
// corrupted-record error; anything else passes through.
func corruptionOr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mapper.ErrMalformedMessages) {
		return apperr.DataCorrupted("Chat session data is corrupted")
	}
	return err
}
