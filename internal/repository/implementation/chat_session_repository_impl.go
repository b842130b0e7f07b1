package implementation

import (
	"context"
	"errors"

	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/mapper"
	"tourism-chat-be/internal/model"
	"tourism-chat-be/internal/pkg/apperr"
	"tourism-chat-be/internal/repository/contract"
	"tourism-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatSessionRepositoryImpl) Create(ctx context.Context, session *entity.ChatSession) error {
	m, err := r.mapper.ChatSessionToModel(session)
	if err != nil {
		return apperr.Storage(err)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Chat session already exists")
		}
		return apperr.Storage(err)
	}
	restored, err := r.mapper.ChatSessionToEntity(m)
	if err != nil {
		return apperr.Storage(err)
	}
	*session = *restored
	return nil
}

func (r *ChatSessionRepositoryImpl) Update(ctx context.Context, session *entity.ChatSession) error {
	m, err := r.mapper.ChatSessionToModel(session)
	if err != nil {
		return apperr.Storage(err)
	}
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("Share token already in use")
		}
		return apperr.Storage(err)
	}
	restored, err := r.mapper.ChatSessionToEntity(m)
	if err != nil {
		return apperr.Storage(err)
	}
	*session = *restored
	return nil
}

func (r *ChatSessionRepositoryImpl) DeleteBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionId, userId).
		Delete(&model.ChatSession{})
	if res.Error != nil {
		return false, apperr.Storage(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ChatSessionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Storage(err)
	}
	e, err := r.mapper.ChatSessionToEntity(&m)
	if err != nil {
		// Malformed payloads bubble up untouched so services can report
		// corruption instead of absence.
		return nil, err
	}
	return e, nil
}

func (r *ChatSessionRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) (*entity.ChatSession, error) {
	return r.findOne(ctx, specification.BySessionID{SessionID: sessionId})
}

func (r *ChatSessionRepositoryImpl) FindBySessionIdAndOwner(ctx context.Context, sessionId string, userId uuid.UUID) (*entity.ChatSession, error) {
	return r.findOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OwnedBy{UserID: userId},
	)
}

func (r *ChatSessionRepositoryImpl) FindByShareId(ctx context.Context, shareId string) (*entity.ChatSession, error) {
	return r.findOne(ctx, specification.ByShareID{ShareID: shareId})
}

func (r *ChatSessionRepositoryImpl) FindAllByOwner(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userId},
		specification.SummaryProjection{},
		specification.OrderBy{Field: "last_activity", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	sessions := make([]*entity.ChatSession, len(models))
	for i, m := range models {
		sessions[i] = r.mapper.ChatSessionSummaryToEntity(m)
	}
	return sessions, nil
}

func (r *ChatSessionRepositoryImpl) MessageCountsBySessionIds(ctx context.Context, sessionIds []string) (map[string]int, error) {
	counts := make(map[string]int, len(sessionIds))
	if len(sessionIds) == 0 {
		return counts, nil
	}

	type row struct {
		SessionId    string
		MessageCount int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Select("session_id, jsonb_array_length(messages) AS message_count").
		Where("session_id IN ?", sessionIds).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	for _, rec := range rows {
		counts[rec.SessionId] = rec.MessageCount
	}
	return counts, nil
}

func (r *ChatSessionRepositoryImpl) CountByOwner(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.ChatSession{}),
		specification.OwnedBy{UserID: userId},
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, apperr.Storage(err)
	}
	return count, nil
}

func (r *ChatSessionRepositoryImpl) CountMessagesByOwnerAndSender(ctx context.Context, userId uuid.UUID, sender entity.MessageSender) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM chat_sessions, jsonb_array_elements(messages) AS msg
		 WHERE user_id = ? AND msg->>'sender' = ?`,
		userId, string(sender),
	).Scan(&count).Error
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return count, nil
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	sessions := make([]*entity.ChatSession, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ChatSessionToEntity(m)
		if err != nil {
			// Skip undecodable rows; a full scan must not abort on one
			// corrupt record.
			continue
		}
		sessions = append(sessions, e)
	}
	return sessions, nil
}
