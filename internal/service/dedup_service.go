package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/logger"
	"tourism-chat-be/internal/repository/unitofwork"
	"tourism-chat-be/pkg/cache"
)

// IDedupService scrubs duplicated messages left behind by concurrent
// appends. Analyze only reports; Cleanup persists the deduplicated
// message lists.
type IDedupService interface {
	Analyze(ctx context.Context) ([]dto.DedupReport, error)
	Cleanup(ctx context.Context) ([]dto.DedupReport, error)
}

type dedupService struct {
	uowFactory unitofwork.RepositoryFactory
	shareCache cache.ISharedSessionCache
	log        logger.ILogger
}

func NewDedupService(
	uowFactory unitofwork.RepositoryFactory,
	shareCache cache.ISharedSessionCache,
	log logger.ILogger,
) IDedupService {
	return &dedupService{
		uowFactory: uowFactory,
		shareCache: shareCache,
		log:        log,
	}
}

// messageFingerprint identifies a duplicate: same trimmed content, same
// sender, timestamps within the same second.
func messageFingerprint(msg entity.ChatMessage) string {
	return strings.TrimSpace(msg.Content) + "-" + string(msg.Sender) + "-" + strconv.FormatInt(msg.Timestamp.Unix(), 10)
}

// dedupeMessages keeps the first occurrence of each fingerprint and
// preserves the original ordering of survivors.
func dedupeMessages(messages []entity.ChatMessage) []entity.ChatMessage {
	seen := make(map[string]struct{}, len(messages))
	unique := make([]entity.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		fp := messageFingerprint(msg)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, msg)
	}
	return unique
}

func (c *dedupService) Analyze(ctx context.Context) ([]dto.DedupReport, error) {
	return c.run(ctx, false)
}

func (c *dedupService) Cleanup(ctx context.Context) ([]dto.DedupReport, error) {
	return c.run(ctx, true)
}

func (c *dedupService) run(ctx context.Context, persist bool) ([]dto.DedupReport, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	sessions, err := repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]dto.DedupReport, 0)
	for _, session := range sessions {
		original := len(session.Messages)
		unique := dedupeMessages(session.Messages)
		removed := original - len(unique)
		if removed == 0 {
			continue
		}

		if persist {
			session.Messages = unique
			session.UpdatedAt = time.Now()
			if err := repo.Update(ctx, session); err != nil {
				return reports, err
			}
			if session.IsShared && session.ShareId != nil {
				c.shareCache.Invalidate(ctx, *session.ShareId)
			}
			c.log.Info("DedupService", "removed duplicate messages", map[string]interface{}{
				"session_id": session.SessionId,
				"removed":    removed,
			})
		}

		reports = append(reports, dto.DedupReport{
			SessionId:         session.SessionId,
			OriginalCount:     original,
			DuplicatesRemoved: removed,
			FinalCount:        len(unique),
		})
	}

	return reports, nil
}
