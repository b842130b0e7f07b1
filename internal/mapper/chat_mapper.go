package mapper

import (
	"encoding/json"
	"errors"

	"tourism-chat-be/internal/entity"
	"tourism-chat-be/internal/model"

	"gorm.io/datatypes"
)

// ErrMalformedMessages marks a session row whose embedded message payload
// cannot be decoded. Services surface this as a corrupted record, not as
// a missing one.
var ErrMalformedMessages = errors.New("chat session messages payload is malformed")

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) (*entity.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	messages := make([]entity.ChatMessage, 0)
	if len(s.Messages) > 0 {
		if err := json.Unmarshal(s.Messages, &messages); err != nil {
			return nil, ErrMalformedMessages
		}
	}

	return &entity.ChatSession{
		Id:           s.Id,
		SessionId:    s.SessionId,
		UserId:       s.UserId,
		Title:        s.Title,
		Messages:     messages,
		IsShared:     s.IsShared,
		ShareId:      s.ShareId,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) (*model.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	messages := s.Messages
	if messages == nil {
		messages = make([]entity.ChatMessage, 0)
	}
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	return &model.ChatSession{
		Id:           s.Id,
		SessionId:    s.SessionId,
		UserId:       s.UserId,
		Title:        s.Title,
		Messages:     datatypes.JSON(payload),
		IsShared:     s.IsShared,
		ShareId:      s.ShareId,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

// ChatSessionSummaryToEntity maps a row fetched without its messages
// column (list projection). Message counts ride along separately.
func (m *ChatMapper) ChatSessionSummaryToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:           s.Id,
		SessionId:    s.SessionId,
		UserId:       s.UserId,
		Title:        s.Title,
		Messages:     make([]entity.ChatMessage, 0),
		IsShared:     s.IsShared,
		ShareId:      s.ShareId,
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
