package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ConvoId   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sender    string    `gorm:"column:convo_person;type:varchar(10);not null;check:convo_person IN ('user','gpt')"`
	Content   string    `gorm:"column:convo_content;type:text"`
	Timestamp time.Time `gorm:"column:convo_timestamp;not null"`
}

func (Conversation) TableName() string {
	return "conversations"
}

type SessionMessageLink struct {
	ChatId    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConvoId   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionMessageLink) TableName() string {
	return "chat_names_conversations"
}
