package contract

import (
	"context"

	"tourism-chat-be/internal/entity"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, log *entity.ActivityLog) error
	CountByEventType(ctx context.Context, eventType string) (int64, error)
}
