package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTitle = "New Chat"

type MessageSender string

const (
	MessageSenderUser MessageSender = "user"
	MessageSenderAI   MessageSender = "ai"
)

func (s MessageSender) Valid() bool {
	return s == MessageSenderUser || s == MessageSenderAI
}

// ChatMessage lives embedded inside its session; it has no standalone
// lifecycle and is deleted together with the session.
type ChatMessage struct {
	Id        string        `json:"id"`
	Content   string        `json:"content"`
	Sender    MessageSender `json:"sender"`
	Timestamp time.Time     `json:"timestamp"`
}

type ChatSession struct {
	Id           uuid.UUID
	SessionId    string // external identity, immutable, unique
	UserId       uuid.UUID
	Title        string
	Messages     []ChatMessage
	IsShared     bool
	ShareId      *string // unique when present, regenerated on each re-share
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *ChatSession) IsOwnedBy(userId uuid.UUID) bool {
	return s.UserId == userId
}
