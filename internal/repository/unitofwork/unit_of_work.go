package unitofwork

import (
	"context"

	"tourism-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ActivityLogRepository() contract.ActivityLogRepository
}
