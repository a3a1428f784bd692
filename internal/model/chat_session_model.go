package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	ChatId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatName  string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	// Bumped only on message append; renames must not touch it. GORM's
	// autoUpdateTime is deliberately not used here.
	UpdatedAt time.Time
}

func (ChatSession) TableName() string {
	return "chat_names"
}

type SessionMembership struct {
	UserId    string    `gorm:"type:varchar(64);primaryKey"`
	ChatId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionMembership) TableName() string {
	return "user_chat_names"
}
