package events

import (
	"time"

	"github.com/google/uuid"
)

// Activity event codes persisted to the activity log.
const (
	TypeSessionCreated   = "SESSION_CREATED"
	TypeSessionDeleted   = "SESSION_DELETED"
	TypeSessionShared    = "SESSION_SHARED"
	TypeSessionUnshared  = "SESSION_UNSHARED"
	TypeMessagesAppended = "MESSAGES_APPENDED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSessionEvent builds an activity event for one chat session. userId
// is nil on anonymous/AI-backend paths.
func NewSessionEvent(eventType, sessionId string, userId *uuid.UUID, detail map[string]interface{}) Event {
	data := map[string]interface{}{
		"session_id": sessionId,
	}
	if userId != nil {
		data["user_id"] = userId.String()
	}
	for k, v := range detail {
		data[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
