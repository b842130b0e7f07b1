package service

import (
	"context"
	"time"

	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetStats(ctx context.Context, userId uuid.UUID) (*dto.UserStatsResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (c *userService) GetStats(ctx context.Context, userId uuid.UUID) (*dto.UserStatsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	totalConversations, err := uow.ChatSessionRepository().CountByOwner(ctx, userId)
	if err != nil {
		return nil, err
	}

	totalUserMessages, err := uow.ChatSessionRepository().CountMessagesByOwnerAndSender(ctx, userId, entity.MessageSenderUser)
	if err != nil {
		return nil, err
	}

	daysActive := int(time.Since(user.CreatedAt).Hours()/24) + 1

	return &dto.UserStatsResponse{
		TotalConversations: totalConversations,
		DaysActive:         daysActive,
		TotalUserMessages:  totalUserMessages,
		MemberSince:        user.CreatedAt.Format("January 2006"),
		AccountType:        user.Role.AccountLabel(),
		Status:             "Active",
	}, nil
}
