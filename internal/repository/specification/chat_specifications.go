package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByConvoID struct {
	ConvoID uuid.UUID
}

func (s ByConvoID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("convo_id = ?", s.ConvoID)
}

type ByConvoIDs struct {
	ConvoIDs []uuid.UUID
}

func (s ByConvoIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("convo_id IN ?", s.ConvoIDs)
}

// OwnedBy filters membership rows by owning user.
type OwnedBy struct {
	UserID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}
