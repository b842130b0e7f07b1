package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActivityLog struct {
	Id        uuid.UUID
	EventType string
	SessionId string
	UserId    *uuid.UUID
	Detail    map[string]interface{}
	CreatedAt time.Time
}
