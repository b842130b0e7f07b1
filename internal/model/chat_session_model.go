package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatSession keeps its messages embedded as a JSONB array so every
// append and dedup rewrite is a single atomic row write.
type ChatSession struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index:idx_chat_sessions_user_activity,priority:1"`
	Title        string         `gorm:"type:text;not null;default:'New Chat'"`
	Messages     datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	IsShared     bool           `gorm:"not null;default:false"`
	ShareId      *string        `gorm:"type:varchar(64);uniqueIndex"`
	LastActivity time.Time      `gorm:"not null;index:idx_chat_sessions_user_activity,priority:2,sort:desc"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
