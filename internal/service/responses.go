package service

import (
	"tourism-chat-be/internal/dto"
	"tourism-chat-be/internal/entity"
)

func messagesToDTO(messages []entity.ChatMessage) []dto.MessageDTO {
	result := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		result = append(result, dto.MessageDTO{
			Id:        m.Id,
			Content:   m.Content,
			Sender:    string(m.Sender),
			Timestamp: m.Timestamp,
		})
	}
	return result
}

// sessionToResponse maps a session for API consumers. Owner identity is
// stripped when the payload goes to an anonymous shared-link reader.
func sessionToResponse(session *entity.ChatSession, includeOwner bool) *dto.ChatSessionResponse {
	if session == nil {
		return nil
	}

	resp := &dto.ChatSessionResponse{
		SessionId:    session.SessionId,
		Title:        session.Title,
		Messages:     messagesToDTO(session.Messages),
		IsShared:     session.IsShared,
		ShareId:      session.ShareId,
		LastActivity: session.LastActivity,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		MessageCount: len(session.Messages),
	}
	if includeOwner {
		userId := session.UserId
		resp.UserId = &userId
	}
	return resp
}
