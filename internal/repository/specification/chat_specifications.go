package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByShareID matches only sessions that are currently shared; a cleared
// or stale share token never resolves through this.
type ByShareID struct {
	ShareID string
}

func (s ByShareID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("share_id = ? AND is_shared = ?", s.ShareID, true)
}

// SummaryProjection drops the messages column for list views.
type SummaryProjection struct{}

func (s SummaryProjection) Apply(db *gorm.DB) *gorm.DB {
	return db.Select("id", "session_id", "user_id", "title", "is_shared", "share_id", "last_activity", "created_at", "updated_at")
}
