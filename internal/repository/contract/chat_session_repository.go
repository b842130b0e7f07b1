package contract

import (
	"context"

	"tourism-chat-be/internal/entity"

	"github.com/google/uuid"
)

// ChatSessionRepository persists whole sessions. Not-found lookups return
// (nil, nil); Create returns a Conflict error when session_id is taken.
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	DeleteBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (bool, error)

	FindBySessionId(ctx context.Context, sessionId string) (*entity.ChatSession, error)
	FindBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (*entity.ChatSession, error)
	FindByShareId(ctx context.Context, shareId string) (*entity.ChatSession, error)

	FindAllByOwner(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ChatSession, error)
	MessageCountsBySessionIds(ctx context.Context, sessionIds []string) (map[string]int, error)
	CountByOwner(ctx context.Context, userId uuid.UUID) (int64, error)
	CountMessagesByOwnerAndSender(ctx context.Context, userId uuid.UUID, sender entity.MessageSender) (int64, error)

	FindAll(ctx context.Context) ([]*entity.ChatSession, error)
}
