package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageDTO struct {
	Id        string    `json:"id" validate:"required"`
	Content   string    `json:"content" validate:"required"`
	Sender    string    `json:"sender" validate:"required,oneof=user ai"`
	Timestamp time.Time `json:"timestamp"`
}

// AIMessageDTO is the batch payload coming from the AI backend. Its
// timestamp field tolerates the formats that integration actually sends
// (RFC3339, epoch seconds, epoch millis) instead of trusting the caller.
type AIMessageDTO struct {
	Id        string   `json:"id" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	Sender    string   `json:"sender" validate:"required,oneof=user ai"`
	Timestamp FlexTime `json:"timestamp"`
}

type CreateChatSessionRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
	Title     string `json:"title"`
}

type CreateChatSessionForAIRequest struct {
	SessionId string `json:"sessionId" validate:"required"`
	UserId    string `json:"userId" validate:"required,uuid"`
	Title     string `json:"title"`
}

// UpdateChatSessionRequest is a whitelist patch: only title and isShared
// are reachable from callers. Share tokens are managed server side.
type UpdateChatSessionRequest struct {
	Title    *string `json:"title"`
	IsShared *bool   `json:"isShared"`
}

type AddMessageRequest struct {
	Message MessageDTO `json:"message" validate:"required"`
}

type AddMessagesBatchRequest struct {
	Messages []MessageDTO `json:"messages" validate:"required,min=1,dive"`
}

type AddMessagesBatchForAIRequest struct {
	Messages []AIMessageDTO `json:"messages" validate:"required,min=1,dive"`
}

type ChatSessionResponse struct {
	SessionId    string       `json:"sessionId"`
	UserId       *uuid.UUID   `json:"userId,omitempty"`
	Title        string       `json:"title"`
	Messages     []MessageDTO `json:"messages"`
	IsShared     bool         `json:"isShared"`
	ShareId      *string      `json:"shareId,omitempty"`
	LastActivity time.Time    `json:"lastActivity"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	MessageCount int          `json:"messageCount"`
}

type ChatSessionSummary struct {
	SessionId    string       `json:"sessionId"`
	Title        string       `json:"title"`
	IsShared     bool         `json:"isShared"`
	ShareId      *string      `json:"shareId,omitempty"`
	LastActivity time.Time    `json:"lastActivity"`
	CreatedAt    time.Time    `json:"createdAt"`
	Messages     []MessageDTO `json:"messages"` // always empty in list view
	MessageCount int          `json:"messageCount"`
}

type PaginationDTO struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type ListChatSessionsResponse struct {
	Sessions   []ChatSessionSummary `json:"sessions"`
	Pagination PaginationDTO        `json:"pagination"`
}

type ShareChatSessionResponse struct {
	Session  *ChatSessionResponse `json:"session"`
	ShareUrl string               `json:"shareUrl"`
}

type DedupReport struct {
	SessionId         string `json:"sessionId"`
	OriginalCount     int    `json:"originalCount"`
	DuplicatesRemoved int    `json:"duplicatesRemoved"`
	FinalCount        int    `json:"finalCount"`
}
