package implementation

import (
	"context"
	"encoding/json"

	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/model"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityLogRepositoryImpl struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) contract.ActivityLogRepository {
	return &ActivityLogRepositoryImpl{db: db}
}

func (r *ActivityLogRepositoryImpl) Create(ctx context.Context, log *entity.ActivityLog) error {
	var detail datatypes.JSON
	if log.Detail != nil {
		payload, err := json.Marshal(log.Detail)
		if err != nil {
			return apperr.Storage(err)
		}
		detail = datatypes.JSON(payload)
	}

	m := &model.ActivityLog{
		Id:        log.Id,
		EventType: log.EventType,
		SessionId: log.SessionId,
		UserId:    log.UserId,
		Detail:    detail,
		CreatedAt: log.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *ActivityLogRepositoryImpl) CountByEventType(ctx context.Context, eventType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ActivityLog{}).
		Where("event_type = ?", eventType).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return count, nil
}
